package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"assistente-tarefas/discord"
	"assistente-tarefas/gemini"
	"assistente-tarefas/gsheets"
	"assistente-tarefas/handlers"
	"assistente-tarefas/utilities"

	"github.com/joho/godotenv"
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}
	utilities.InitLogger()

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		log.Fatal("DISCORD_TOKEN não definido. O bot não pode iniciar.")
	}

	ctx := context.Background()

	// A conexão com a planilha é necessária para operar, mas a falha aqui
	// não derruba o processo: cada mensagem verifica de novo e tenta
	// reconectar
	var store handlers.TaskStore
	if s, err := gsheets.Connect(ctx); err != nil {
		utilities.LogError(err, "Erro ao conectar ao Google Sheets na inicialização")
	} else if err := s.Init(ctx); err != nil {
		utilities.LogError(err, "Erro ao inicializar a planilha")
	} else {
		store = s
	}

	var oracle handlers.Oracle
	if g, err := gemini.NewClient(ctx); err != nil {
		utilities.LogWarn("Gemini indisponível, mensagens não serão interpretadas: %v", err)
	} else {
		oracle = g
	}

	reconnect := func(ctx context.Context) (handlers.TaskStore, error) {
		s, err := gsheets.Connect(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.Init(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}

	dispatcher := handlers.NewDispatcher(store, oracle, reconnect)

	bot, err := discord.New(token, dispatcher)
	if err != nil {
		log.Fatalf("Erro ao criar o bot do Discord: %v", err)
	}
	dispatcher.SetUserDirectory(bot)

	if err := bot.Start(); err != nil {
		log.Fatalf("Erro ao conectar ao Discord: %v", err)
	}
	defer bot.Close()

	startReminderLoop(ctx, dispatcher, bot)

	go LoadRoutes(dispatcher)

	// Aguarda sinal de encerramento
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	utilities.LogInfo("Encerrando o bot")
}

// startReminderLoop inicia o scanner de lembretes quando há canal de
// destino configurado; sem canal válido o laço nem é criado
func startReminderLoop(ctx context.Context, dispatcher *handlers.Dispatcher, bot *discord.Bot) {
	channelID := os.Getenv("REMINDER_CHANNEL_ID")
	if channelID == "" || !digitsOnly.MatchString(channelID) {
		utilities.LogInfo("REMINDER_CHANNEL_ID não definido ou inválido. Loop de lembretes não iniciado.")
		return
	}

	interval := time.Duration(0)
	if raw := os.Getenv("REMINDER_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			interval = d
		} else {
			utilities.LogWarn("REMINDER_INTERVAL inválido (%s), usando padrão de 24h", raw)
		}
	}

	scanner := handlers.NewReminderScanner(dispatcher, bot.SendTo(channelID), interval)
	go func() {
		// O scanner só parte depois que o gateway está pronto
		if err := bot.WaitUntilReady(ctx); err != nil {
			utilities.LogError(err, "Loop de lembretes não iniciado")
			return
		}
		scanner.Run(ctx)
	}()
	utilities.LogInfo("Loop de lembretes agendado para o canal %s", channelID)
}
