package handlers

import "strings"

// Termos que se referem ao próprio autor da mensagem
var selfTokens = []string{"me", "my", "my tasks"}

// ResolveAssignee mapeia uma referência textual de responsável para um id
// estável da plataforma. Precedência: auto-referência, depois as menções da
// mensagem (token de menção, nome puro e as duas codificações <@id> e
// <@!id>), por fim a própria string crua. Referência vazia significa "sem
// responsável", rotulado "everyone" em contextos de listagem.
func ResolveAssignee(ref string, msg Message) (assigneeID, displayName string) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return "", "everyone"
	}

	lower := strings.ToLower(trimmed)
	for _, token := range selfTokens {
		if lower == token {
			return msg.AuthorID, msg.AuthorName
		}
	}

	for _, m := range msg.Mentions {
		if trimmed == "<@"+m.ID+">" || trimmed == "<@!"+m.ID+">" || trimmed == m.Name {
			return m.ID, m.Name
		}
	}

	// Sem menção correspondente: o texto cru vira o valor armazenado
	return ref, ref
}
