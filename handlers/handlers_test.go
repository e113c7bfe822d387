package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"assistente-tarefas/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore implementa TaskStore em memória para os testes
type fakeStore struct {
	tasks       []models.Task
	addErr      error
	readErr     error
	updateErr   error
	completeErr error
	lastFilter  models.TaskFilter
}

func (f *fakeStore) AddTask(_ context.Context, title, assigneeID, dueDate string) (int, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	id := 0
	for _, t := range f.tasks {
		if t.ID > id {
			id = t.ID
		}
	}
	id++
	f.tasks = append(f.tasks, models.Task{
		ID:         id,
		Title:      title,
		Status:     models.StatusPending,
		AssigneeID: assigneeID,
		DueDate:    dueDate,
		CreatedAt:  "2025-07-01 10:00:00",
	})
	return id, nil
}

func (f *fakeStore) ReadTasks(_ context.Context, flt models.TaskFilter) ([]models.Task, error) {
	f.lastFilter = flt
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []models.Task
	for _, t := range f.tasks {
		if flt.Status != "" && t.Status != flt.Status {
			continue
		}
		if flt.AssigneeID != "" && t.AssigneeID != flt.AssigneeID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) UpdateTask(_ context.Context, taskID int, upd models.TaskUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID != taskID {
			continue
		}
		if upd.Title != nil {
			f.tasks[i].Title = *upd.Title
		}
		if upd.AssigneeID != nil {
			f.tasks[i].AssigneeID = *upd.AssigneeID
		}
		if upd.DueDate != nil {
			f.tasks[i].DueDate = *upd.DueDate
		}
		return nil
	}
	return models.ErrTaskNotFound
}

func (f *fakeStore) MarkTaskComplete(_ context.Context, taskID int) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			f.tasks[i].Status = models.StatusCompleted
			return nil
		}
	}
	return models.ErrTaskNotFound
}

type fakeOracle struct {
	name string
	args map[string]any
	err  error
}

func (f fakeOracle) GetIntentAndEntities(context.Context, string) (string, map[string]any, error) {
	return f.name, f.args, f.err
}

type fakeDirectory map[string]string

func (f fakeDirectory) DisplayName(_ context.Context, userID string) (string, error) {
	if name, ok := f[userID]; ok {
		return name, nil
	}
	return "", fmt.Errorf("usuário %s não encontrado", userID)
}

func captureReplies(replies *[]string) Replier {
	return func(text string) error {
		*replies = append(*replies, text)
		return nil
	}
}

func testMessage() Message {
	return Message{AuthorID: "42", AuthorName: "Tester", Content: "qualquer coisa"}
}

func dispatchWith(store TaskStore, oracle Oracle) *Dispatcher {
	return NewDispatcher(store, oracle, nil)
}

func TestHandleMessageStoreUnavailable(t *testing.T) {
	d := NewDispatcher(nil, fakeOracle{name: "list_tasks"}, nil)
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "trouble connecting")
}

func TestHandleMessageNoIntent(t *testing.T) {
	d := dispatchWith(&fakeStore{}, fakeOracle{})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "not sure how to help")
}

func TestHandleMessageOracleError(t *testing.T) {
	d := dispatchWith(&fakeStore{}, fakeOracle{err: errors.New("boom")})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "error trying to understand")
}

func TestHandleMessageUnknownFunction(t *testing.T) {
	d := dispatchWith(&fakeStore{}, fakeOracle{name: "delete_task"})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "`delete_task`")
}

func TestAddTaskThenList(t *testing.T) {
	store := &fakeStore{}
	d := dispatchWith(store, fakeOracle{name: "add_task", args: map[string]any{
		"title":    "Buy milk",
		"due_date": "2025-07-08",
	}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	require.Len(t, store.tasks, 1)
	assert.Equal(t, 1, store.tasks[0].ID)
	assert.Equal(t, "Buy milk", store.tasks[0].Title)
	assert.Equal(t, models.StatusPending, store.tasks[0].Status)
	assert.Equal(t, "2025-07-08 23:59", store.tasks[0].DueDate)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "✅ Task added: 'Buy milk' (ID: 1)")
	assert.Contains(t, replies[0], "(Due: 2025-07-08 23:59)")

	// O próximo id é sempre max(existentes)+1
	d2 := dispatchWith(store, fakeOracle{name: "add_task", args: map[string]any{"title": "Wash car"}})
	replies = nil
	d2.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))
	require.Len(t, store.tasks, 2)
	assert.Equal(t, 2, store.tasks[1].ID)

	d3 := dispatchWith(store, fakeOracle{name: "list_tasks", args: map[string]any{}})
	replies = nil
	d3.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "**Pending Tasks**")
	assert.Contains(t, replies[0], "**ID 1:** Buy milk (Due: 2025-07-08 23:59)")
	assert.Equal(t, models.StatusPending, store.lastFilter.Status)
}

func TestAddTaskMissingTitle(t *testing.T) {
	store := &fakeStore{}
	d := dispatchWith(store, fakeOracle{name: "add_task", args: map[string]any{"due_date": "today"}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	assert.Empty(t, store.tasks)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "provide a title")
}

func TestAddTaskResolvesMentionButRepliesWithRawText(t *testing.T) {
	store := &fakeStore{}
	d := dispatchWith(store, fakeOracle{name: "add_task", args: map[string]any{
		"title":    "Prepare slides",
		"assignee": "<@99>",
	}})
	msg := testMessage()
	msg.Mentions = []Mention{{ID: "99", Name: "alice"}}
	var replies []string

	d.HandleMessage(context.Background(), msg, captureReplies(&replies))

	require.Len(t, store.tasks, 1)
	assert.Equal(t, "99", store.tasks[0].AssigneeID)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "for <@99>")
}

func TestListTasksSelfFilterUsesAuthorID(t *testing.T) {
	store := &fakeStore{tasks: []models.Task{
		{ID: 1, Title: "Mine", Status: models.StatusPending, AssigneeID: "42"},
		{ID: 2, Title: "Other", Status: models.StatusPending, AssigneeID: "99"},
	}}
	d := dispatchWith(store, fakeOracle{name: "list_tasks", args: map[string]any{"assignee": "me"}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	assert.Equal(t, "42", store.lastFilter.AssigneeID)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "for **Tester**")
	assert.Contains(t, replies[0], "Mine")
	assert.NotContains(t, replies[0], "Other")
}

func TestListTasksEmptyNamesActiveFilters(t *testing.T) {
	store := &fakeStore{}
	d := dispatchWith(store, fakeOracle{name: "list_tasks", args: map[string]any{
		"assignee":       "me",
		"due_date_range": "today",
	}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	require.Len(t, replies, 1)
	assert.Equal(t, "No pending tasks found for Tester due today.", replies[0])
}

func TestListTasksDisplaysDirectoryName(t *testing.T) {
	store := &fakeStore{tasks: []models.Task{
		{ID: 1, Title: "Report", Status: models.StatusPending, AssigneeID: "99"},
	}}
	d := dispatchWith(store, fakeOracle{name: "list_tasks", args: map[string]any{}})
	d.SetUserDirectory(fakeDirectory{"99": "Alice"})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "(Assigned: Alice)")
}

func TestListTasksDirectoryFailureDegradesToRawValue(t *testing.T) {
	store := &fakeStore{tasks: []models.Task{
		{ID: 1, Title: "Report", Status: models.StatusPending, AssigneeID: "1234"},
		{ID: 2, Title: "Slides", Status: models.StatusPending, AssigneeID: "joana"},
	}}
	d := dispatchWith(store, fakeOracle{name: "list_tasks", args: map[string]any{}})
	d.SetUserDirectory(fakeDirectory{})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "(Assigned: 1234)")
	assert.Contains(t, replies[0], "(Assigned: joana)")
}

func TestUpdateClearsAssigneeOnly(t *testing.T) {
	store := &fakeStore{tasks: []models.Task{{
		ID:         1,
		Title:      "Report",
		Status:     models.StatusPending,
		AssigneeID: "99",
		DueDate:    "2025-07-08 23:59",
	}}}
	d := dispatchWith(store, fakeOracle{name: "update_task", args: map[string]any{
		"target_task_id": float64(1),
		"new_assignee":   "",
	}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	assert.Equal(t, "", store.tasks[0].AssigneeID)
	assert.Equal(t, "Report", store.tasks[0].Title)
	assert.Equal(t, "2025-07-08 23:59", store.tasks[0].DueDate)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "has been updated")
}

func TestUpdateWithoutFieldsPrompts(t *testing.T) {
	store := &fakeStore{tasks: []models.Task{{ID: 1, Title: "Report", Status: models.StatusPending}}}
	d := dispatchWith(store, fakeOracle{name: "update_task", args: map[string]any{
		"target_task_id": float64(1),
	}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	assert.Equal(t, "Report", store.tasks[0].Title)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "what you want to update")
}

func TestUpdateInvalidIDFormat(t *testing.T) {
	d := dispatchWith(&fakeStore{}, fakeOracle{name: "update_task", args: map[string]any{
		"target_task_id": "abc",
		"new_title":      "x",
	}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Invalid Task ID format: 'abc'")
}

func TestUpdateNotFound(t *testing.T) {
	d := dispatchWith(&fakeStore{}, fakeOracle{name: "update_task", args: map[string]any{
		"target_task_id": float64(42),
		"new_title":      "x",
	}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Could not update task (ID: 42)")
}

func TestCompleteByID(t *testing.T) {
	store := &fakeStore{tasks: []models.Task{{ID: 7, Title: "Report", Status: models.StatusPending}}}
	d := dispatchWith(store, fakeOracle{name: "complete_task", args: map[string]any{
		"target_task_id": float64(7),
	}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	assert.Equal(t, models.StatusCompleted, store.tasks[0].Status)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "🎉")
	assert.Contains(t, replies[0], "(ID: 7)")
}

func TestCompleteByTitleSingleMatch(t *testing.T) {
	store := &fakeStore{tasks: []models.Task{
		{ID: 3, Title: "Report", Status: models.StatusPending},
		{ID: 4, Title: "Slides", Status: models.StatusPending},
	}}
	d := dispatchWith(store, fakeOracle{name: "complete_task", args: map[string]any{
		"target_task_title": "report",
	}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	assert.Equal(t, models.StatusCompleted, store.tasks[0].Status)
	require.Len(t, replies, 2)
	assert.Contains(t, replies[0], "ID 3")
	assert.Contains(t, replies[1], "marked as complete")
}

func TestCompleteByTitleAmbiguous(t *testing.T) {
	store := &fakeStore{tasks: []models.Task{
		{ID: 3, Title: "Report", Status: models.StatusPending},
		{ID: 5, Title: "report", Status: models.StatusPending},
	}}
	d := dispatchWith(store, fakeOracle{name: "complete_task", args: map[string]any{
		"target_task_title": "Report",
	}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	// Nenhuma das duas muda de status
	assert.Equal(t, models.StatusPending, store.tasks[0].Status)
	assert.Equal(t, models.StatusPending, store.tasks[1].Status)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Multiple tasks found")
	assert.Contains(t, replies[0], "3, 5")
}

func TestCompleteByTitleNoMatch(t *testing.T) {
	store := &fakeStore{tasks: []models.Task{{ID: 1, Title: "Report", Status: models.StatusCompleted}}}
	d := dispatchWith(store, fakeOracle{name: "complete_task", args: map[string]any{
		"target_task_title": "Report",
	}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	// A busca por título só considera pendentes
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "No pending task found with title 'Report'")
}

func TestCompleteNotFoundByID(t *testing.T) {
	d := dispatchWith(&fakeStore{}, fakeOracle{name: "complete_task", args: map[string]any{
		"target_task_id": float64(99),
	}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Could not mark task (ID: 99) as complete")
}

func TestCompleteWithoutIDOrTitle(t *testing.T) {
	d := dispatchWith(&fakeStore{}, fakeOracle{name: "complete_task", args: map[string]any{}})
	var replies []string

	d.HandleMessage(context.Background(), testMessage(), captureReplies(&replies))

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "specify the Task ID or Title")
}
