package discord

import (
	"context"
	"strings"
	"sync"

	"assistente-tarefas/handlers"
	"assistente-tarefas/utilities"

	"github.com/bwmarrin/discordgo"
)

// Bot liga o gateway do Discord ao dispatcher de intenções
type Bot struct {
	session    *discordgo.Session
	dispatcher *handlers.Dispatcher

	readyOnce sync.Once
	ready     chan struct{}
}

// New cria a sessão com os intents necessários para ler menções e conteúdo
// de mensagens
func New(token string, dispatcher *handlers.Dispatcher) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		utilities.LogError(err, "Erro ao criar a sessão do Discord")
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	bot := &Bot{
		session:    session,
		dispatcher: dispatcher,
		ready:      make(chan struct{}),
	}
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onMessageCreate)
	return bot, nil
}

// Start abre a conexão com o gateway
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		utilities.LogError(err, "Erro ao conectar ao gateway do Discord")
		return err
	}
	return nil
}

// Close encerra a sessão
func (b *Bot) Close() error {
	return b.session.Close()
}

// WaitUntilReady bloqueia até o evento Ready do gateway (pré-condição do
// scanner de lembretes)
func (b *Bot) WaitUntilReady(ctx context.Context) error {
	select {
	case <-b.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	utilities.LogInfo("%s conectado ao Discord (ID: %s)", r.User.Username, r.User.ID)
	b.readyOnce.Do(func() { close(b.ready) })
}

// onMessageCreate trata mensagens que mencionam o bot: remove o token de
// menção e entrega o restante ao dispatcher
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || s.State.User == nil || m.Author.ID == s.State.User.ID {
		return
	}
	botID := s.State.User.ID
	if !mentionsUser(m.Mentions, botID) {
		return
	}

	content := stripMention(m.Content, botID)
	reply := func(text string) error {
		_, err := s.ChannelMessageSend(m.ChannelID, text)
		return err
	}

	if content == "" {
		if err := reply("You mentioned me, but didn't provide a command. How can I help?"); err != nil {
			utilities.LogError(err, "Erro ao enviar resposta no Discord")
		}
		return
	}

	msg := handlers.Message{
		AuthorID:   m.Author.ID,
		AuthorName: authorDisplayName(m),
		Content:    content,
		Mentions:   collectMentions(m.Mentions, botID),
	}

	b.dispatcher.HandleMessage(context.Background(), msg, reply)
}

// DisplayName implementa handlers.UserDirectory via consulta REST ao
// usuário; falhas degradam para o valor armazenado em quem chama
func (b *Bot) DisplayName(_ context.Context, userID string) (string, error) {
	user, err := b.session.User(userID)
	if err != nil {
		return "", err
	}
	if user.GlobalName != "" {
		return user.GlobalName, nil
	}
	return user.Username, nil
}

// SendTo devolve uma função de envio presa a um canal (destino dos
// lembretes)
func (b *Bot) SendTo(channelID string) func(text string) error {
	return func(text string) error {
		_, err := b.session.ChannelMessageSend(channelID, text)
		return err
	}
}

func mentionsUser(mentions []*discordgo.User, userID string) bool {
	for _, u := range mentions {
		if u != nil && u.ID == userID {
			return true
		}
	}
	return false
}

func stripMention(content, botID string) string {
	content = strings.ReplaceAll(content, "<@!"+botID+">", "")
	content = strings.ReplaceAll(content, "<@"+botID+">", "")
	return strings.TrimSpace(content)
}

func collectMentions(mentions []*discordgo.User, botID string) []handlers.Mention {
	out := make([]handlers.Mention, 0, len(mentions))
	for _, u := range mentions {
		if u == nil || u.ID == botID {
			continue
		}
		out = append(out, handlers.Mention{ID: u.ID, Name: u.Username})
	}
	return out
}

func authorDisplayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
