package widget

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/homelead-widget/internal/ai"
)

type recordingAI struct {
	got []ai.Message
}

func (r *recordingAI) GetReply(_ context.Context, history []ai.Message) (string, error) {
	r.got = history
	return "ok", nil
}

func TestAIDriverMapsRoles(t *testing.T) {
	rec := &recordingAI{}
	d := NewAIDriver(rec)

	reply, err := d.Submit(context.Background(), []Message{
		{Sender: SenderBot, Text: DefaultGreeting},
		{Sender: SenderUser, Text: "How many leads today?"},
	}, "How many leads today?")
	require.NoError(t, err)
	require.Equal(t, "ok", reply)
	require.Equal(t, []ai.Message{
		{Role: ai.RoleAssistant, Text: DefaultGreeting},
		{Role: ai.RoleUser, Text: "How many leads today?"},
	}, rec.got)
}

func TestAIDriverAppendsMissingUserTurn(t *testing.T) {
	rec := &recordingAI{}
	d := NewAIDriver(rec)

	_, err := d.Submit(context.Background(), nil, "hello")
	require.NoError(t, err)
	require.Equal(t, []ai.Message{{Role: ai.RoleUser, Text: "hello"}}, rec.got)
}
