package handlers

import (
	"context"
	"fmt"
	"strings"

	"assistente-tarefas/models"
	"assistente-tarefas/utilities"
)

// Corte aplicado quando a listagem estoura o limite do Discord
const listLineCap = 30

// handleListTasks trata a intenção list_tasks: varredura das pendentes com
// filtros opcionais de responsável e intervalo de datas
func (d *Dispatcher) handleListTasks(ctx context.Context, store TaskStore, msg Message, args map[string]any, reply Replier) {
	utilities.LogDebug("list_tasks solicitado por %s", msg.AuthorName)

	assigneeRaw, _ := stringArg(args, "assignee")
	targetAssigneeID := ""
	responseAssigneeName := "everyone"
	if assigneeRaw != "" {
		targetAssigneeID, responseAssigneeName = ResolveAssignee(assigneeRaw, msg)
	}

	dueRange, _ := stringArg(args, "due_date_range")

	tasks, err := store.ReadTasks(ctx, models.TaskFilter{
		AssigneeID:   targetAssigneeID,
		DueDateRange: dueRange,
		Status:       models.StatusPending,
	})
	if err != nil {
		utilities.LogError(err, "Erro ao listar tarefas")
		d.reply(reply, fmt.Sprintf("Sorry, I couldn't list the tasks. Error: %v", err))
		return
	}

	if len(tasks) == 0 {
		filterDesc := ""
		if responseAssigneeName != "everyone" {
			filterDesc += fmt.Sprintf(" for %s", responseAssigneeName)
		}
		if dueRange != "" {
			filterDesc += fmt.Sprintf(" due %s", dueRange)
		}
		d.reply(reply, fmt.Sprintf("No pending tasks found%s.", filterDesc))
		return
	}

	header := "**Pending Tasks**"
	if responseAssigneeName != "everyone" {
		header += fmt.Sprintf(" for **%s**", responseAssigneeName)
	}
	if dueRange != "" {
		header += fmt.Sprintf(" (Due: **%s**)", dueRange)
	}

	lines := []string{header, "---"}
	for _, task := range tasks {
		lines = append(lines, d.formatTaskLine(ctx, task, ""))
	}

	full := strings.Join(lines, "\n")
	if len(full) > maxMessageLen {
		keep := listLineCap
		if keep > len(lines) {
			keep = len(lines)
		}
		full = strings.Join(lines[:keep], "\n") + "\n...(list too long, truncated)"
	}

	utilities.LogInfo("Listagem enviada com %d tarefa(s)", len(tasks))
	d.reply(reply, full)
}

// formatTaskLine renderiza uma tarefa em uma linha, com prefixo opcional
// (usado pelo digest de lembretes)
func (d *Dispatcher) formatTaskLine(ctx context.Context, task models.Task, prefix string) string {
	line := fmt.Sprintf("%s**ID %d:** %s", prefix, task.ID, task.Title)
	if task.DueDate != "" {
		line += fmt.Sprintf(" (Due: %s)", task.DueDate)
	}
	if task.AssigneeID != "" {
		line += fmt.Sprintf(" (Assigned: %s)", d.displayAssignee(ctx, task.AssigneeID))
	}
	return line
}
