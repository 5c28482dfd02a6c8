package insight

import (
	"context"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to a generation backend
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient sends a conversation to a chat model and returns the reply
// text. Implementations are shared by all requests.
type ChatClient interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Model() string
}

// splitSystem separates system instructions from the conversation turns
// for providers that take them out of band
func splitSystem(messages []Message) (string, []Message) {
	var system []string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}
