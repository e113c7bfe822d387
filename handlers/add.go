package handlers

import (
	"context"
	"fmt"

	"assistente-tarefas/utilities"
)

// handleAddTask trata a intenção add_task: normaliza data e responsável e
// acrescenta a tarefa com status pending
func (d *Dispatcher) handleAddTask(ctx context.Context, store TaskStore, msg Message, args map[string]any, reply Replier) {
	utilities.LogDebug("add_task solicitado por %s", msg.AuthorName)

	title, _ := stringArg(args, "title")
	if title == "" {
		d.reply(reply, "Please provide a title for the task.")
		return
	}

	dueRaw, _ := stringArg(args, "due_date")
	parsedDue := normalizeDueDate(dueRaw)

	assigneeRaw, _ := stringArg(args, "assignee")
	assigneeID := ""
	if assigneeRaw != "" {
		assigneeID, _ = ResolveAssignee(assigneeRaw, msg)
	}

	taskID, err := store.AddTask(ctx, title, assigneeID, parsedDue)
	if err != nil {
		utilities.LogError(err, "Erro ao adicionar tarefa")
		d.reply(reply, fmt.Sprintf("Sorry, I couldn't add the task. Error: %v", err))
		return
	}

	response := fmt.Sprintf("✅ Task added: '%s' (ID: %d)", title, taskID)
	if assigneeRaw != "" {
		// A confirmação mostra o texto original, não o id resolvido
		response += fmt.Sprintf(" for %s", assigneeRaw)
	}
	if parsedDue != "" {
		response += fmt.Sprintf(" (Due: %s)", parsedDue)
	}

	utilities.LogInfo("Tarefa criada: '%s' (ID: %d)", title, taskID)
	d.reply(reply, response)
}
