package handlers

import (
	"strings"
	"time"

	"assistente-tarefas/utilities"
)

const (
	dueDateLayout  = "2006-01-02 15:04"
	dateOnlyLayout = "2006-01-02"
	defaultDueTime = "23:59"
)

// ParseRelativeDueDate normaliza uma data de entrega para a forma canônica
// 'YYYY-MM-DD HH:MM'. Aceita os termos relativos "today" e "tomorrow"
// (como substring, sem distinção de caixa), a forma canônica completa e a
// forma só-data (que recebe 23:59). O booleano indica sucesso.
func ParseRelativeDueDate(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	lower := strings.ToLower(raw)
	now := time.Now()

	if strings.Contains(lower, "today") {
		return now.Format(dateOnlyLayout) + " " + defaultDueTime, true
	}
	if strings.Contains(lower, "tomorrow") {
		return now.AddDate(0, 0, 1).Format(dateOnlyLayout) + " " + defaultDueTime, true
	}

	if t, err := time.Parse(dueDateLayout, raw); err == nil {
		return t.Format(dueDateLayout), true
	}
	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return t.Format(dateOnlyLayout) + " " + defaultDueTime, true
	}

	utilities.LogWarn("Não foi possível interpretar a data de entrega: %s", raw)
	return "", false
}

// normalizeDueDate aplica ParseRelativeDueDate com a política de fallback
// dos handlers: uma string não reconhecida de 10 caracteres sem ':' ganha
// ' 23:59' sem validação; qualquer outra passa crua para o armazenamento.
// Isso aceita formatos canônicos futuros do oráculo ao custo de poder
// gravar texto malformado.
func normalizeDueDate(raw string) string {
	if raw == "" {
		return ""
	}
	if parsed, ok := ParseRelativeDueDate(raw); ok {
		return parsed
	}
	if !strings.Contains(raw, ":") && len(raw) == 10 {
		return raw + " " + defaultDueTime
	}
	return raw
}
