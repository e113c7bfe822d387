package gsheets

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"assistente-tarefas/models"
	"assistente-tarefas/utilities"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const defaultWorksheet = "Tasks"

const createdAtLayout = "2006-01-02 15:04:05"

// Store encapsula o acesso à planilha de tarefas no Google Sheets
type Store struct {
	srv           *sheets.Service
	spreadsheetID string
	worksheet     string
}

// Connect autentica com a conta de serviço e testa o acesso à planilha
func Connect(ctx context.Context) (*Store, error) {
	// Configurações da planilha
	credsPath := os.Getenv("GOOGLE_CREDS_PATH")
	spreadsheetID := os.Getenv("SPREADSHEET_ID")
	worksheet := os.Getenv("WORKSHEET_NAME")

	if credsPath == "" {
		return nil, fmt.Errorf("variável de ambiente GOOGLE_CREDS_PATH não definida")
	}
	if spreadsheetID == "" {
		return nil, fmt.Errorf("variável de ambiente SPREADSHEET_ID não definida")
	}
	if worksheet == "" {
		worksheet = defaultWorksheet
	}

	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credsPath),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		utilities.LogError(err, "Erro ao criar o cliente do Google Sheets")
		return nil, err
	}

	s := &Store{srv: srv, spreadsheetID: spreadsheetID, worksheet: worksheet}

	// Testa o acesso com uma leitura simples
	if _, err := s.readRows(ctx); err != nil {
		utilities.LogError(err, "Erro ao acessar a planilha")
		return nil, err
	}

	utilities.LogInfo("Conectado ao Google Sheets com sucesso (aba '%s')", worksheet)
	return s, nil
}

func (s *Store) fullRange() string {
	return s.worksheet + "!A:F"
}

func (s *Store) idColumnRange() string {
	return s.worksheet + "!A:A"
}

func (s *Store) readRows(ctx context.Context) ([][]interface{}, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, s.fullRange()).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// Init grava a linha de cabeçalho caso a planilha esteja vazia. Idempotente.
func (s *Store) Init(ctx context.Context) error {
	rows, err := s.readRows(ctx)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}

	header := make([]interface{}, len(models.SheetHeaders))
	for i, h := range models.SheetHeaders {
		header[i] = h
	}
	_, err = s.srv.Spreadsheets.Values.Append(s.spreadsheetID, s.fullRange(), &sheets.ValueRange{
		Values: [][]interface{}{header},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		utilities.LogError(err, "Erro ao gravar cabeçalho na planilha")
		return err
	}
	utilities.LogInfo("Aba '%s' inicializada com cabeçalho", s.worksheet)
	return nil
}

// idColumn devolve todos os valores da coluna A como strings
func (s *Store) idColumn(ctx context.Context) ([]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, s.idColumnRange()).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			ids = append(ids, "")
			continue
		}
		ids = append(ids, cellString(row[0]))
	}
	return ids, nil
}

// NextTaskID devolve max(ids existentes)+1, ou 1 quando a planilha está
// vazia. A sequência ler-máximo-depois-gravar não é protegida contra duas
// adições concorrentes; a API de valores do Sheets não oferece append
// condicional.
func (s *Store) NextTaskID(ctx context.Context) (int, error) {
	ids, err := s.idColumn(ctx)
	if err != nil {
		utilities.LogError(err, "Erro ao obter o próximo task_id")
		return 0, err
	}
	return nextIDFromColumn(ids), nil
}

func nextIDFromColumn(ids []string) int {
	max := 0
	for _, raw := range ids {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n <= 0 {
			// Cabeçalho e células não numéricas são ignorados
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}

// AddTask acrescenta uma nova tarefa com status pending e devolve o id
// atribuído. assigneeID e dueDate vazios significam "sem valor".
func (s *Store) AddTask(ctx context.Context, title, assigneeID, dueDate string) (int, error) {
	taskID, err := s.NextTaskID(ctx)
	if err != nil {
		return 0, err
	}
	createdAt := time.Now().Format(createdAtLayout)

	row := []interface{}{strconv.Itoa(taskID), title, models.StatusPending, assigneeID, dueDate, createdAt}
	_, err = s.srv.Spreadsheets.Values.Append(s.spreadsheetID, s.fullRange(), &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		utilities.LogError(err, fmt.Sprintf("Erro ao adicionar a tarefa '%s'", title))
		return 0, err
	}

	utilities.LogInfo("Tarefa '%s' adicionada com ID %d", title, taskID)
	return taskID, nil
}

// ReadTasks lê todas as linhas e aplica os filtros em memória.
// A planilha não tem índice secundário; toda leitura é uma varredura completa.
func (s *Store) ReadTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	rows, err := s.readRows(ctx)
	if err != nil {
		utilities.LogError(err, "Erro ao ler tarefas da planilha")
		return nil, err
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		task, ok := rowToTask(row)
		if !ok {
			// Cabeçalho ou linha sem id numérico
			continue
		}
		tasks = append(tasks, task)
	}

	return filterTasks(tasks, f, time.Now()), nil
}

// findRow localiza a linha (1-indexada) da tarefa pelo id na coluna A
func (s *Store) findRow(ctx context.Context, taskID int) (int, error) {
	ids, err := s.idColumn(ctx)
	if err != nil {
		return 0, err
	}
	want := strconv.Itoa(taskID)
	for i, raw := range ids {
		if strings.TrimSpace(raw) == want {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: id %d", models.ErrTaskNotFound, taskID)
}

// UpdateTask reescreve apenas os campos presentes em upd, mantendo os demais.
// Devolve models.ErrTaskNotFound (encapsulado) quando o id não existe.
func (s *Store) UpdateTask(ctx context.Context, taskID int, upd models.TaskUpdate) error {
	rowIdx, err := s.findRow(ctx, taskID)
	if err != nil {
		return err
	}

	rowRange := fmt.Sprintf("%s!A%d:F%d", s.worksheet, rowIdx, rowIdx)
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, rowRange).Context(ctx).Do()
	if err != nil {
		utilities.LogError(err, fmt.Sprintf("Erro ao ler a linha da tarefa %d", taskID))
		return err
	}

	current := make([]interface{}, len(models.SheetHeaders))
	for i := range current {
		current[i] = ""
	}
	if len(resp.Values) > 0 {
		for i, cell := range resp.Values[0] {
			if i < len(current) {
				current[i] = cellString(cell)
			}
		}
	}

	if upd.Title != nil {
		current[1] = *upd.Title
	}
	if upd.AssigneeID != nil {
		current[3] = *upd.AssigneeID
	}
	if upd.DueDate != nil {
		current[4] = *upd.DueDate
	}

	_, err = s.srv.Spreadsheets.Values.Update(s.spreadsheetID, rowRange, &sheets.ValueRange{
		Values: [][]interface{}{current},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		utilities.LogError(err, fmt.Sprintf("Erro ao atualizar a tarefa %d", taskID))
		return err
	}

	utilities.LogInfo("Tarefa %d atualizada", taskID)
	return nil
}

// MarkTaskComplete altera somente a célula de status para completed
func (s *Store) MarkTaskComplete(ctx context.Context, taskID int) error {
	rowIdx, err := s.findRow(ctx, taskID)
	if err != nil {
		return err
	}

	// status é a terceira coluna do cabeçalho fixo
	statusRange := fmt.Sprintf("%s!C%d", s.worksheet, rowIdx)
	_, err = s.srv.Spreadsheets.Values.Update(s.spreadsheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{models.StatusCompleted}},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		utilities.LogError(err, fmt.Sprintf("Erro ao concluir a tarefa %d", taskID))
		return err
	}

	utilities.LogInfo("Tarefa %d marcada como concluída", taskID)
	return nil
}

func rowToTask(row []interface{}) (models.Task, bool) {
	if len(row) == 0 {
		return models.Task{}, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(cellString(row[0])))
	if err != nil {
		return models.Task{}, false
	}

	cell := func(i int) string {
		if i < len(row) {
			return cellString(row[i])
		}
		return ""
	}

	return models.Task{
		ID:         id,
		Title:      cell(1),
		Status:     cell(2),
		AssigneeID: cell(3),
		DueDate:    cell(4),
		CreatedAt:  cell(5),
	}, true
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
