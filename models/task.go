package models

import "errors"

// Nomes das colunas na planilha, na ordem fixa em que são gravadas
const (
	ColTaskID     = "task_id"
	ColTitle      = "title"
	ColStatus     = "status"
	ColAssigneeID = "assignee_id"
	ColDueDate    = "due_date"
	ColCreatedAt  = "created_at"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Valores aceitos para o filtro de intervalo de datas
const (
	DueRangeToday         = "today"
	DueRangeThisWeek      = "this_week"
	DueRangeNextSevenDays = "next_seven_days"
)

// SheetHeaders é a linha de cabeçalho da planilha
var SheetHeaders = []string{ColTaskID, ColTitle, ColStatus, ColAssigneeID, ColDueDate, ColCreatedAt}

// ErrTaskNotFound indica que o task_id não existe na planilha
var ErrTaskNotFound = errors.New("tarefa não encontrada")

type Task struct {
	ID         int    `json:"task_id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	AssigneeID string `json:"assignee_id"`
	DueDate    string `json:"due_date"`
	CreatedAt  string `json:"created_at"`
}

// TaskFilter descreve os filtros aplicados na leitura de tarefas.
// Campos vazios significam "sem filtro".
type TaskFilter struct {
	AssigneeID   string
	DueDateRange string
	Status       string
}

// TaskUpdate descreve uma atualização parcial. Um ponteiro nil significa
// "não alterar"; um ponteiro para string vazia limpa o campo.
type TaskUpdate struct {
	Title      *string
	AssigneeID *string
	DueDate    *string
}

// IsEmpty informa se nenhum campo seria alterado
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.AssigneeID == nil && u.DueDate == nil
}
