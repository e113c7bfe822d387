package handlers

import (
	"context"
	"errors"
	"fmt"

	"assistente-tarefas/models"
	"assistente-tarefas/utilities"
)

// handleUpdateTask trata a intenção update_task: atualização parcial por
// id, distinguindo chave ausente de valor vazio (valor vazio limpa o campo)
func (d *Dispatcher) handleUpdateTask(ctx context.Context, store TaskStore, msg Message, args map[string]any, reply Replier) {
	utilities.LogDebug("update_task solicitado por %s", msg.AuthorName)

	taskID, present, rawID, err := taskIDArg(args, "target_task_id")
	if err != nil {
		d.reply(reply, fmt.Sprintf("Invalid Task ID format: '%s'. Please use a number.", rawID))
		return
	}
	if !present {
		d.reply(reply, "Please specify the Task ID to update. For example: `@Bot update task ID 15 due to next Monday`")
		return
	}

	newTitle, hasTitle := stringArg(args, "new_title")
	newDueRaw, hasDue := stringArg(args, "new_due_date")
	newAssigneeRaw, hasAssignee := stringArg(args, "new_assignee")

	if !hasTitle && !hasDue && !hasAssignee {
		d.reply(reply, "Please specify what you want to update (e.g., new title, due date, or assignee).")
		return
	}

	upd := models.TaskUpdate{}
	if hasTitle {
		upd.Title = &newTitle
	}
	if hasDue {
		parsed := normalizeDueDate(newDueRaw)
		upd.DueDate = &parsed
	}
	if hasAssignee {
		// Chave presente com valor vazio limpa o responsável; aqui não se
		// aplica o rótulo "everyone" de listagem
		newAssigneeID := ""
		if newAssigneeRaw != "" {
			newAssigneeID, _ = ResolveAssignee(newAssigneeRaw, msg)
		}
		upd.AssigneeID = &newAssigneeID
	}

	if err := store.UpdateTask(ctx, taskID, upd); err != nil {
		if errors.Is(err, models.ErrTaskNotFound) {
			utilities.LogWarn("Tarefa %d não encontrada para atualização", taskID)
			d.reply(reply, fmt.Sprintf("Could not update task (ID: %d). It might not exist or an error occurred.", taskID))
			return
		}
		utilities.LogError(err, "Erro ao atualizar tarefa")
		d.reply(reply, fmt.Sprintf("Sorry, I couldn't update the task. Error: %v", err))
		return
	}

	utilities.LogInfo("Tarefa %d atualizada por %s", taskID, msg.AuthorName)
	d.reply(reply, fmt.Sprintf("🔄 Task (ID: %d) has been updated.", taskID))
}
