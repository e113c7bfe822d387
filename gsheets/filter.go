package gsheets

import (
	"strings"
	"time"

	"assistente-tarefas/models"
	"assistente-tarefas/utilities"
)

const dateOnlyLayout = "2006-01-02"

// filterTasks aplica os filtros de status, responsável e intervalo de datas
// sobre a lista completa. A comparação de responsável é igualdade exata de
// string contra o valor armazenado (id resolvido ou nome cru), sem nova
// resolução na leitura.
func filterTasks(tasks []models.Task, f models.TaskFilter, now time.Time) []models.Task {
	out := tasks

	if f.Status != "" {
		filtered := make([]models.Task, 0, len(out))
		for _, t := range out {
			if t.Status == f.Status {
				filtered = append(filtered, t)
			}
		}
		out = filtered
	}

	if f.AssigneeID != "" {
		filtered := make([]models.Task, 0, len(out))
		for _, t := range out {
			if t.AssigneeID == f.AssigneeID {
				filtered = append(filtered, t)
			}
		}
		out = filtered
	}

	if f.DueDateRange != "" {
		out = filterByDueRange(out, f.DueDateRange, now)
	}

	return out
}

func filterByDueRange(tasks []models.Task, dueRange string, now time.Time) []models.Task {
	today := truncateToDay(now)
	filtered := make([]models.Task, 0, len(tasks))

	for _, t := range tasks {
		if t.DueDate == "" {
			continue
		}
		datePart := strings.SplitN(t.DueDate, " ", 2)[0]
		due, err := time.Parse(dateOnlyLayout, datePart)
		if err != nil {
			// Datas malformadas nunca chegam ao usuário como erro
			utilities.LogWarn("Tarefa %d tem data de entrega inválida: %s", t.ID, t.DueDate)
			continue
		}

		switch dueRange {
		case models.DueRangeToday:
			if due.Equal(today) {
				filtered = append(filtered, t)
			}
		case models.DueRangeThisWeek:
			// Semana ISO: segunda a domingo, inclusive nas duas pontas
			start := startOfISOWeek(today)
			end := start.AddDate(0, 0, 6)
			if !due.Before(start) && !due.After(end) {
				filtered = append(filtered, t)
			}
		case models.DueRangeNextSevenDays:
			// [hoje, hoje+7)
			if !due.Before(today) && due.Before(today.AddDate(0, 0, 7)) {
				filtered = append(filtered, t)
			}
		default:
			// Data exata YYYY-MM-DD comparada com a parte de data armazenada
			if datePart == dueRange {
				filtered = append(filtered, t)
			}
		}
	}

	return filtered
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfISOWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
