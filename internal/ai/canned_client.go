package ai

import (
	"context"
	"time"

	"github.com/Vovarama1992/homelead-widget/internal/suggest"
)

// CannedClient answers every message with the same text after a fixed delay.
// It stands in for the assistant until a real backend is configured.
type CannedClient struct {
	reply       string
	suggestions []string
	delay       time.Duration
}

func NewCannedClient(prompts PromptSet, delay time.Duration) *CannedClient {
	return &CannedClient{
		reply:       prompts.Canned.Reply,
		suggestions: prompts.Canned.Suggestions,
		delay:       delay,
	}
}

func (c *CannedClient) GetReply(ctx context.Context, _ []Message) (string, error) {
	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return suggest.Encode(c.reply, c.suggestions)
}
