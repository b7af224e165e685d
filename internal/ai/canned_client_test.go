package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/homelead-widget/internal/suggest"
)

func TestCannedClientReply(t *testing.T) {
	c := NewCannedClient(DefaultPrompts(), 0)

	reply, err := c.GetReply(context.Background(), []Message{{Role: RoleUser, Text: "hi"}})
	require.NoError(t, err)
	require.Equal(t, DefaultCannedReply, reply)
	require.Empty(t, suggest.Decode(reply))
}

func TestCannedClientEncodesSuggestions(t *testing.T) {
	prompts := DefaultPrompts()
	prompts.Canned.Reply = "Noted."
	prompts.Canned.Suggestions = []string{"Show details", "What's next"}
	c := NewCannedClient(prompts, time.Millisecond)

	reply, err := c.GetReply(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "Noted. [Show details, What's next]", reply)
}

func TestCannedClientHonoursCancellation(t *testing.T) {
	c := NewCannedClient(DefaultPrompts(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetReply(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}
