package widget

import (
	"context"

	"github.com/samber/lo"

	"github.com/Vovarama1992/homelead-widget/internal/ai"
)

type aiDriver struct {
	ai ai.AI
}

// NewAIDriver drives the conversation with an ai.AI backend.
func NewAIDriver(client ai.AI) Driver {
	return &aiDriver{ai: client}
}

func (d *aiDriver) Submit(ctx context.Context, history []Message, userText string) (string, error) {
	msgs := lo.Map(history, func(m Message, _ int) ai.Message {
		role := ai.RoleUser
		if m.Sender == SenderBot {
			role = ai.RoleAssistant
		}
		return ai.Message{Role: role, Text: m.Text}
	})

	if last, ok := lo.Last(history); !ok || last.Sender != SenderUser || last.Text != userText {
		msgs = append(msgs, ai.Message{Role: ai.RoleUser, Text: userText})
	}
	return d.ai.GetReply(ctx, msgs)
}
