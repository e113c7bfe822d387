package gemini

import (
	"context"
	"fmt"
	"os"

	"assistente-tarefas/utilities"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// taskTools são as declarações de função enviadas ao Gemini. A extração de
// intenção é inteiramente delegada ao modelo: ou ele devolve uma chamada de
// função com argumentos, ou nada.
var taskTools = []*genai.Tool{
	{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "add_task",
				Description: "Adds a new task to the list. If multiple tasks are requested, call this function for each.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":    {Type: genai.TypeString, Description: "The specific content of the task."},
						"due_date": {Type: genai.TypeString, Description: "The task's due date, interpreted from relative expressions into 'YYYY-MM-DD HH:MM' format."},
						"assignee": {Type: genai.TypeString, Description: "The name or mention of the person assigned to the task."},
					},
					Required: []string{"title"},
				},
			},
			{
				Name:        "list_tasks",
				Description: "Displays a list of tasks matching the given criteria. If no criteria, shows all pending tasks.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"assignee":       {Type: genai.TypeString, Description: "Filter tasks by assignee name. 'Me' or 'my tasks' refers to the requester."},
						"due_date_range": {Type: genai.TypeString, Description: "Filter by due date, e.g., 'today', 'this_week', 'next_seven_days' or an exact 'YYYY-MM-DD'."},
					},
				},
			},
			{
				Name:        "update_task",
				Description: "Updates an existing task's information.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"target_task_id":    {Type: genai.TypeNumber, Description: "The ID of the task to update."},
						"target_task_title": {Type: genai.TypeString, Description: "The current title of the task to update."},
						"new_title":         {Type: genai.TypeString, Description: "The new title for the task."},
						"new_due_date":      {Type: genai.TypeString, Description: "The new due date."},
						"new_assignee":      {Type: genai.TypeString, Description: "The new assignee."},
					},
				},
			},
			{
				Name:        "complete_task",
				Description: "Marks a specified task as completed.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"target_task_id":    {Type: genai.TypeNumber, Description: "The ID of the task to complete."},
						"target_task_title": {Type: genai.TypeString, Description: "The title of the task to complete."},
					},
				},
			},
		},
	},
}

// Client encapsula o oráculo de intenção baseado no Gemini
type Client struct {
	client *genai.Client
	model  string
}

// NewClient cria o cliente a partir das variáveis de ambiente GEMINI_API_KEY
// e GEMINI_MODEL (opcional)
func NewClient(ctx context.Context) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("variável de ambiente GEMINI_API_KEY não definida")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		utilities.LogError(err, "Erro ao criar o cliente do Gemini")
		return nil, err
	}

	utilities.LogInfo("Cliente do Gemini configurado (modelo %s)", model)
	return &Client{client: client, model: model}, nil
}

// GetIntentAndEntities envia a mensagem ao Gemini com as ferramentas de
// tarefa e devolve (nome da função, argumentos). Devolve ("", nil, nil)
// quando o modelo não produz nenhuma chamada de função.
func (c *Client) GetIntentAndEntities(ctx context.Context, userMessage string) (string, map[string]any, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userMessage), &genai.GenerateContentConfig{
		Tools: taskTools,
	})
	if err != nil {
		utilities.LogError(err, "Erro na chamada ao Gemini")
		return "", nil, err
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.FunctionCall != nil {
				utilities.LogDebug("Gemini devolveu a função %s", part.FunctionCall.Name)
				return part.FunctionCall.Name, part.FunctionCall.Args, nil
			}
		}
	}

	utilities.LogDebug("Gemini não devolveu chamada de função")
	return "", nil, nil
}
