package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"assistente-tarefas/models"
	"assistente-tarefas/utilities"
)

// Limite de tamanho de mensagem do Discord
const maxMessageLen = 2000

// Mention é uma identidade citada explicitamente na mensagem de origem
type Mention struct {
	ID   string
	Name string
}

// Message é a mensagem de chat já despida de detalhes da plataforma
type Message struct {
	AuthorID   string
	AuthorName string
	Content    string
	Mentions   []Mention
}

// Replier envia uma resposta no canal de origem
type Replier func(text string) error

// TaskStore é o contrato do armazenamento de tarefas (planilha)
type TaskStore interface {
	AddTask(ctx context.Context, title, assigneeID, dueDate string) (int, error)
	ReadTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, error)
	UpdateTask(ctx context.Context, taskID int, upd models.TaskUpdate) error
	MarkTaskComplete(ctx context.Context, taskID int) error
}

// Oracle é o oráculo externo de classificação de intenção
type Oracle interface {
	GetIntentAndEntities(ctx context.Context, text string) (string, map[string]any, error)
}

// UserDirectory resolve um id de usuário da plataforma para um nome de
// exibição. Pode falhar por entrada; quem chama degrada para o valor cru.
type UserDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// ConnectFunc tenta (re)estabelecer a conexão com o armazenamento
type ConnectFunc func(ctx context.Context) (TaskStore, error)

// Dispatcher roteia intenções extraídas pelo oráculo para os quatro
// handlers de tarefa. Todas as dependências são referências explícitas.
type Dispatcher struct {
	mu      sync.Mutex
	store   TaskStore
	oracle  Oracle
	users   UserDirectory
	connect ConnectFunc
}

func NewDispatcher(store TaskStore, oracle Oracle, connect ConnectFunc) *Dispatcher {
	return &Dispatcher{store: store, oracle: oracle, connect: connect}
}

// SetUserDirectory injeta o diretório de usuários depois que a plataforma
// de chat está construída
func (d *Dispatcher) SetUserDirectory(users UserDirectory) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = users
}

// taskStore devolve a conexão atual; se não houver, tenta reconectar uma
// única vez. Não há política de retry além dessa nova verificação.
func (d *Dispatcher) taskStore(ctx context.Context) TaskStore {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.store != nil {
		return d.store
	}
	if d.connect == nil {
		return nil
	}
	store, err := d.connect(ctx)
	if err != nil {
		utilities.LogError(err, "Falha ao reconectar ao armazenamento de tarefas")
		return nil
	}
	utilities.LogInfo("Conexão com o armazenamento de tarefas restabelecida")
	d.store = store
	return store
}

// StoreAvailable informa se há conexão ativa com o armazenamento
func (d *Dispatcher) StoreAvailable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store != nil
}

// OracleAvailable informa se o oráculo de intenção está configurado
func (d *Dispatcher) OracleAvailable() bool {
	return d.oracle != nil
}

// PendingTasks lista as tarefas pendentes (usado pela superfície HTTP)
func (d *Dispatcher) PendingTasks(ctx context.Context) ([]models.Task, error) {
	store := d.taskStore(ctx)
	if store == nil {
		return nil, fmt.Errorf("armazenamento de tarefas indisponível")
	}
	return store.ReadTasks(ctx, models.TaskFilter{Status: models.StatusPending})
}

// HandleMessage processa uma mensagem dirigida ao bot: consulta o oráculo
// e roteia para o handler correspondente
func (d *Dispatcher) HandleMessage(ctx context.Context, msg Message, reply Replier) {
	utilities.LogDebug("Mensagem de %s: %s", msg.AuthorName, msg.Content)

	store := d.taskStore(ctx)
	if store == nil {
		d.reply(reply, "Sorry, I'm having trouble connecting to the task database. Please try again later.")
		return
	}

	if d.oracle == nil {
		utilities.LogWarn("Oráculo de intenção não configurado; mensagem ignorada")
		d.reply(reply, "Sorry, I encountered an error trying to understand that.")
		return
	}

	functionName, args, err := d.oracle.GetIntentAndEntities(ctx, msg.Content)
	if err != nil {
		utilities.LogError(err, "Erro ao extrair intenção da mensagem")
		d.reply(reply, "Sorry, I encountered an error trying to understand that.")
		return
	}

	if functionName == "" {
		d.reply(reply, "I'm not sure how to help with that. Could you try rephrasing?")
		return
	}

	switch functionName {
	case "add_task":
		d.handleAddTask(ctx, store, msg, args, reply)
	case "list_tasks":
		d.handleListTasks(ctx, store, msg, args, reply)
	case "update_task":
		d.handleUpdateTask(ctx, store, msg, args, reply)
	case "complete_task":
		d.handleCompleteTask(ctx, store, msg, args, reply)
	default:
		d.reply(reply, fmt.Sprintf("I recognized the action `%s` but don't know how to handle it yet.", functionName))
	}
}

func (d *Dispatcher) reply(reply Replier, text string) {
	if reply == nil {
		return
	}
	if err := reply(text); err != nil {
		utilities.LogError(err, "Erro ao enviar resposta no canal")
	}
}

var numericPattern = regexp.MustCompile(`^\d+$`)

// displayAssignee devolve o melhor nome possível para o valor armazenado:
// consulta o diretório quando o valor parece um id numérico, senão (ou em
// caso de falha) devolve o valor cru.
func (d *Dispatcher) displayAssignee(ctx context.Context, assignee string) string {
	if assignee == "" {
		return ""
	}
	d.mu.Lock()
	users := d.users
	d.mu.Unlock()
	if users == nil || !numericPattern.MatchString(assignee) {
		return assignee
	}
	name, err := users.DisplayName(ctx, assignee)
	if err != nil || name == "" {
		return assignee
	}
	return name
}

// stringArg extrai um argumento textual do mapa do oráculo. O booleano
// indica presença da chave (mesmo com valor vazio), distinção necessária
// para limpar campos no update.
func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case float64:
		// O oráculo não garante tipos; números viram texto
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return fmt.Sprint(t), true
	}
}

// taskIDArg extrai um id de tarefa que pode chegar como número ou string.
// err não-nil significa formato inválido informado pelo usuário.
func taskIDArg(args map[string]any, key string) (id int, present bool, raw string, err error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false, "", nil
	}
	switch t := v.(type) {
	case float64:
		return int(t), true, strconv.FormatInt(int64(t), 10), nil
	case int:
		return t, true, strconv.Itoa(t), nil
	case string:
		raw = strings.TrimSpace(t)
		id, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return 0, true, raw, fmt.Errorf("id de tarefa inválido: %q", raw)
		}
		return id, true, raw, nil
	default:
		raw = fmt.Sprint(t)
		return 0, true, raw, fmt.Errorf("id de tarefa inválido: %q", raw)
	}
}
