package widget

import (
	"context"
	"time"
)

//go:generate mockgen -source=ports.go -destination=mocks/mock_ports.go -package=mocks

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type Panel string

const (
	PanelClosed  Panel = "closed"
	PanelWelcome Panel = "welcome"
	PanelChat    Panel = "chat"
)

type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is what rendering code reads after every transition.
type Snapshot struct {
	SessionID       string    `json:"sessionId"`
	Company         string    `json:"company,omitempty"`
	SignedIn        bool      `json:"signedIn"`
	ToggleAvailable bool      `json:"toggleAvailable"`
	Panel           Panel     `json:"panel"`
	Messages        []Message `json:"messages"`
	Suggestions     []string  `json:"suggestions"`
}

// Driver turns one user message into one bot reply. The reply may carry a
// suggestion block. history holds the conversation up to and including the
// user message.
type Driver interface {
	Submit(ctx context.Context, history []Message, userText string) (string, error)
}

// Directory checks a company identity at sign-in.
type Directory interface {
	Resolve(ctx context.Context, identity string) error
}

// Transcript records appended messages for operators. It is write-only:
// sessions are never restored from it.
type Transcript interface {
	SaveMessage(ctx context.Context, sessionID string, msg Message) error
}
