package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assistente-tarefas/models"
	"assistente-tarefas/utilities"
)

const defaultReminderInterval = 24 * time.Hour

// ReminderScanner varre periodicamente as tarefas pendentes com entrega nos
// próximos sete dias e publica um digest no canal configurado
type ReminderScanner struct {
	dispatcher *Dispatcher
	send       func(text string) error
	interval   time.Duration
}

// NewReminderScanner cria o scanner. send pode ser nil quando não há canal
// de destino configurado; nesse caso cada execução vira no-op registrado.
func NewReminderScanner(d *Dispatcher, send func(text string) error, interval time.Duration) *ReminderScanner {
	if interval <= 0 {
		interval = defaultReminderInterval
	}
	return &ReminderScanner{dispatcher: d, send: send, interval: interval}
}

// Run executa uma varredura imediata e depois uma por intervalo. O laço
// nunca termina por causa de uma falha de varredura.
func (r *ReminderScanner) Run(ctx context.Context) {
	utilities.LogInfo("Scanner de lembretes iniciado (intervalo %v)", r.interval)

	r.scanOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			utilities.LogInfo("Scanner de lembretes encerrado")
			return
		case <-ticker.C:
			r.scanOnce(ctx)
		}
	}
}

// scanOnce faz uma varredura. Qualquer pânico ou erro é contido aqui,
// registrado e reportado ao canal em melhor esforço.
func (r *ReminderScanner) scanOnce(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("pânico na varredura de lembretes: %v", rec)
			utilities.LogError(err, "Scanner de lembretes")
			r.trySend(fmt.Sprintf("⚠️ Error encountered while generating task reminders: %v", rec))
		}
	}()

	if r.send == nil {
		utilities.LogWarn("Scanner de lembretes: canal de destino não configurado")
		return
	}

	store := r.dispatcher.taskStore(ctx)
	if store == nil {
		utilities.LogWarn("Scanner de lembretes: armazenamento de tarefas indisponível")
		return
	}

	utilities.LogDebug("Scanner de lembretes: buscando tarefas dos próximos 7 dias")
	tasks, err := store.ReadTasks(ctx, models.TaskFilter{
		Status:       models.StatusPending,
		DueDateRange: models.DueRangeNextSevenDays,
	})
	if err != nil {
		utilities.LogError(err, "Scanner de lembretes: erro ao ler tarefas")
		r.trySend(fmt.Sprintf("⚠️ Error encountered while generating task reminders: %v", err))
		return
	}
	if len(tasks) == 0 {
		utilities.LogDebug("Scanner de lembretes: nenhuma tarefa próxima")
		return
	}

	digest := r.buildDigest(ctx, tasks, time.Now())
	if digest == "" {
		utilities.LogDebug("Scanner de lembretes: nenhuma tarefa se encaixou nos grupos")
		return
	}

	if len(digest) > maxMessageLen {
		const marker = "\n...(truncated)"
		digest = digest[:maxMessageLen-len(marker)] + marker
	}

	if err := r.send(digest); err != nil {
		utilities.LogError(err, "Scanner de lembretes: erro ao enviar digest")
		return
	}
	utilities.LogInfo("Scanner de lembretes: digest enviado")
}

func (r *ReminderScanner) trySend(text string) {
	if r.send == nil {
		return
	}
	if err := r.send(text); err != nil {
		utilities.LogError(err, "Scanner de lembretes: erro ao enviar aviso de falha")
	}
}

// buildDigest monta as três seções na ordem fixa hoje/amanhã/próximos.
// Devolve vazio quando nenhum grupo tem tarefas.
func (r *ReminderScanner) buildDigest(ctx context.Context, tasks []models.Task, now time.Time) string {
	dueToday, dueTomorrow, upcoming := bucketTasks(tasks, now)
	if len(dueToday) == 0 && len(dueTomorrow) == 0 && len(upcoming) == 0 {
		return ""
	}

	parts := []string{"**📅 Weekly Task Reminders!**\n"}

	appendSection := func(title string, group []models.Task) {
		if len(group) == 0 {
			return
		}
		parts = append(parts, "\n"+title)
		for _, task := range group {
			parts = append(parts, r.dispatcher.formatTaskLine(ctx, task, "- "))
		}
	}

	appendSection("**🔥 Due Today:**", dueToday)
	appendSection("**⏰ Due Tomorrow:**", dueTomorrow)
	appendSection("**🗓️ Upcoming (Next 7 Days):**", upcoming)

	return strings.Join(parts, "\n")
}

// bucketTasks agrupa por data de entrega: hoje, amanhã e estritamente entre
// amanhã e hoje+7. Tarefas com data vazia ou ilegível são puladas com aviso;
// o dia 7 exato fica fora de todos os grupos.
func bucketTasks(tasks []models.Task, now time.Time) (dueToday, dueTomorrow, upcoming []models.Task) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	horizon := today.AddDate(0, 0, 7)

	for _, task := range tasks {
		if task.DueDate == "" {
			continue
		}
		datePart := strings.SplitN(task.DueDate, " ", 2)[0]
		due, err := time.Parse(dateOnlyLayout, datePart)
		if err != nil {
			utilities.LogWarn("Tarefa %d tem data de entrega inválida no lembrete: %s", task.ID, task.DueDate)
			continue
		}

		switch {
		case due.Equal(today):
			dueToday = append(dueToday, task)
		case due.Equal(tomorrow):
			dueTomorrow = append(dueTomorrow, task)
		case due.After(tomorrow) && due.Before(horizon):
			upcoming = append(upcoming, task)
		}
	}
	return dueToday, dueTomorrow, upcoming
}
