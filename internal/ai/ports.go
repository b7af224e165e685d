package ai

import "context"

// AI is the assistant backend. It knows nothing about the widget or its panels.
type AI interface {
	GetReply(ctx context.Context, history []Message) (string, error)
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is the backend-neutral dialogue format.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// lastUserText returns the newest user turn of history.
func lastUserText(history []Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			return history[i].Text
		}
	}
	return ""
}
