package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"assistente-tarefas/models"
	"assistente-tarefas/utilities"
)

// handleCompleteTask trata a intenção complete_task. O id tem prioridade
// sobre o título; a busca por título é igualdade exata sem distinção de
// caixa entre as pendentes, e empates são devolvidos ao usuário.
func (d *Dispatcher) handleCompleteTask(ctx context.Context, store TaskStore, msg Message, args map[string]any, reply Replier) {
	utilities.LogDebug("complete_task solicitado por %s", msg.AuthorName)

	taskID, idPresent, rawID, err := taskIDArg(args, "target_task_id")
	if err != nil {
		d.reply(reply, fmt.Sprintf("Invalid Task ID format: '%s'. Please use a number or specify by title.", rawID))
		return
	}

	targetTitle, _ := stringArg(args, "target_task_title")

	if !idPresent && targetTitle != "" {
		tasks, err := store.ReadTasks(ctx, models.TaskFilter{Status: models.StatusPending})
		if err != nil {
			utilities.LogError(err, fmt.Sprintf("Erro ao buscar tarefa pelo título '%s'", targetTitle))
			d.reply(reply, fmt.Sprintf("Sorry, I had trouble finding task by title: '%s'.", targetTitle))
			return
		}

		var matched []models.Task
		for _, task := range tasks {
			if strings.EqualFold(task.Title, targetTitle) {
				matched = append(matched, task)
			}
		}

		switch len(matched) {
		case 0:
			d.reply(reply, fmt.Sprintf("No pending task found with title '%s'. Please check the title or use an ID.", targetTitle))
			return
		case 1:
			taskID = matched[0].ID
			idPresent = true
			d.reply(reply, fmt.Sprintf("Found task '%s' with ID %d. Marking as complete.", targetTitle, taskID))
		default:
			ids := make([]string, 0, len(matched))
			for _, task := range matched {
				ids = append(ids, strconv.Itoa(task.ID))
			}
			d.reply(reply, fmt.Sprintf("Multiple tasks found with title '%s'. Please specify by ID: %s", targetTitle, strings.Join(ids, ", ")))
			return
		}
	}

	if !idPresent {
		d.reply(reply, "Please specify the Task ID or Title to complete. For example: `@Bot complete task ID 15` or `@Bot mark 'Prepare report' as done`")
		return
	}

	if err := store.MarkTaskComplete(ctx, taskID); err != nil {
		if errors.Is(err, models.ErrTaskNotFound) {
			utilities.LogWarn("Tarefa %d não encontrada para conclusão", taskID)
			d.reply(reply, fmt.Sprintf("Could not mark task (ID: %d) as complete. It might not exist or was already completed.", taskID))
			return
		}
		utilities.LogError(err, "Erro ao concluir tarefa")
		d.reply(reply, fmt.Sprintf("Sorry, I couldn't complete the task. Error: %v", err))
		return
	}

	utilities.LogInfo("Tarefa %d concluída por %s", taskID, msg.AuthorName)
	d.reply(reply, fmt.Sprintf("🎉 Great job! Task (ID: %d) has been marked as complete.", taskID))
}
