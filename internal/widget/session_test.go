package widget_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Vovarama1992/homelead-widget/internal/widget"
	"github.com/Vovarama1992/homelead-widget/internal/widget/mocks"
)

type funcDriver func(ctx context.Context, history []widget.Message, userText string) (string, error)

func (f funcDriver) Submit(ctx context.Context, history []widget.Message, userText string) (string, error) {
	return f(ctx, history, userText)
}

func echoDriver(reply string) widget.Driver {
	return funcDriver(func(context.Context, []widget.Message, string) (string, error) {
		return reply, nil
	})
}

func newSession(t *testing.T, opts widget.Options) *widget.Session {
	t.Helper()
	s := widget.NewSession(context.Background(), "test-session", opts)
	t.Cleanup(s.Wait)
	return s
}

func openChat(t *testing.T, s *widget.Session) {
	t.Helper()
	req := require.New(t)
	req.NoError(s.SignIn(context.Background(), "Acme Realty"))
	req.NoError(s.Toggle())
	req.NoError(s.StartChat())
}

type turn struct {
	Sender widget.Sender
	Text   string
}

func turns(msgs []widget.Message) []turn {
	out := make([]turn, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, turn{Sender: m.Sender, Text: m.Text})
	}
	return out
}

func TestAcmeRealtyScenario(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	driver := mocks.NewMockDriver(ctrl)

	driver.EXPECT().
		Submit(gomock.Any(), gomock.Any(), "How many leads today?").
		DoAndReturn(func(_ context.Context, history []widget.Message, _ string) (string, error) {
			req.Equal([]turn{
				{widget.SenderBot, widget.DefaultGreeting},
				{widget.SenderUser, "How many leads today?"},
			}, turns(history))
			return "You have 12 new leads. [Show details, What's next]", nil
		})

	s := newSession(t, widget.Options{Driver: driver})

	req.NoError(s.SignIn(context.Background(), "Acme Realty"))
	snap := s.Snapshot()
	req.Equal(widget.PanelClosed, snap.Panel)
	req.True(snap.ToggleAvailable)
	req.Equal("Acme Realty", snap.Company)

	req.NoError(s.Toggle())
	req.Equal(widget.PanelWelcome, s.Snapshot().Panel)

	req.NoError(s.StartChat())
	snap = s.Snapshot()
	req.Equal(widget.PanelChat, snap.Panel)
	req.Equal([]turn{{widget.SenderBot, "Hi there! What brings you here today?"}}, turns(snap.Messages))
	req.Empty(snap.Suggestions)

	req.NoError(s.SendUserMessage("How many leads today?"))
	msgs := s.Snapshot().Messages
	req.GreaterOrEqual(len(msgs), 2)
	req.Equal(turn{widget.SenderUser, "How many leads today?"}, turns(msgs)[1])

	s.Wait()
	snap = s.Snapshot()
	req.Equal([]turn{
		{widget.SenderBot, widget.DefaultGreeting},
		{widget.SenderUser, "How many leads today?"},
		{widget.SenderBot, "You have 12 new leads. [Show details, What's next]"},
	}, turns(snap.Messages))
	req.Equal([]string{"Show details", "What's next"}, snap.Suggestions)
}

func TestSignInRejectsBlankIdentity(t *testing.T) {
	req := require.New(t)
	s := newSession(t, widget.Options{})

	err := s.SignIn(context.Background(), "   ")
	req.ErrorIs(err, widget.ErrEmptyIdentity)
	req.True(widget.IsRejection(err))

	snap := s.Snapshot()
	req.False(snap.SignedIn)
	req.False(snap.ToggleAvailable)
	req.ErrorIs(s.Toggle(), widget.ErrNotSignedIn)
	req.Equal(widget.PanelClosed, s.Snapshot().Panel)
}

func TestSignInHappensOnce(t *testing.T) {
	req := require.New(t)
	s := newSession(t, widget.Options{})

	req.NoError(s.SignIn(context.Background(), "Acme Realty"))
	req.ErrorIs(s.SignIn(context.Background(), "Other Co"), widget.ErrAlreadySignedIn)
	req.Equal("Acme Realty", s.Snapshot().Company)
}

func TestSignInDelegatesToDirectory(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)

	dir.EXPECT().Resolve(gomock.Any(), "Ghost Co").Return(widget.ErrUnknownCompany)
	dir.EXPECT().Resolve(gomock.Any(), "Acme Realty").Return(nil)

	s := newSession(t, widget.Options{Directory: dir})

	err := s.SignIn(context.Background(), "Ghost Co")
	req.ErrorIs(err, widget.ErrUnknownCompany)
	req.True(widget.IsRejection(err))
	req.False(s.Snapshot().SignedIn)

	req.NoError(s.SignIn(context.Background(), "Acme Realty"))
	req.True(s.Snapshot().SignedIn)
}

func TestToggleTwiceIsNeutral(t *testing.T) {
	req := require.New(t)
	s := newSession(t, widget.Options{})
	req.NoError(s.SignIn(context.Background(), "Acme Realty"))
	before := s.Snapshot()

	req.NoError(s.Toggle())
	req.Equal(widget.PanelWelcome, s.Snapshot().Panel)
	req.NoError(s.Toggle())

	after := s.Snapshot()
	req.Equal(widget.PanelClosed, after.Panel)
	req.Equal(before.Company, after.Company)
	req.Equal(before.Messages, after.Messages)
}

func TestReopeningStartedChatSkipsWelcome(t *testing.T) {
	req := require.New(t)
	s := newSession(t, widget.Options{Driver: echoDriver("ok")})
	openChat(t, s)

	req.NoError(s.Toggle())
	req.Equal(widget.PanelClosed, s.Snapshot().Panel)
	req.NoError(s.Toggle())
	req.Equal(widget.PanelChat, s.Snapshot().Panel)

	req.NoError(s.Close())
	req.NoError(s.Toggle())
	req.Equal(widget.PanelChat, s.Snapshot().Panel)
	req.Len(s.Snapshot().Messages, 1)
}

func TestStartChatSeedsGreetingOnce(t *testing.T) {
	req := require.New(t)
	s := newSession(t, widget.Options{Greeting: "Welcome back!"})
	openChat(t, s)

	req.ErrorIs(s.StartChat(), widget.ErrInvalidTransition)
	req.Equal([]turn{{widget.SenderBot, "Welcome back!"}}, turns(s.Snapshot().Messages))
}

func TestStartChatOnlyFromWelcome(t *testing.T) {
	req := require.New(t)
	s := newSession(t, widget.Options{})

	req.ErrorIs(s.StartChat(), widget.ErrNotSignedIn)
	req.NoError(s.SignIn(context.Background(), "Acme Realty"))
	req.ErrorIs(s.StartChat(), widget.ErrInvalidTransition)
	req.Equal(widget.PanelClosed, s.Snapshot().Panel)
	req.Empty(s.Snapshot().Messages)
}

func TestCloseHidesOpenPanels(t *testing.T) {
	req := require.New(t)
	s := newSession(t, widget.Options{})

	req.ErrorIs(s.Close(), widget.ErrNotSignedIn)
	req.NoError(s.SignIn(context.Background(), "Acme Realty"))
	req.NoError(s.Close())
	req.Equal(widget.PanelClosed, s.Snapshot().Panel)

	req.NoError(s.Toggle())
	req.NoError(s.Close())
	req.Equal(widget.PanelClosed, s.Snapshot().Panel)
}

func TestSendBlankMessageIsNoop(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	driver := mocks.NewMockDriver(ctrl)
	s := newSession(t, widget.Options{Driver: driver})
	openChat(t, s)

	for _, text := range []string{"", "   ", "\n\t"} {
		err := s.SendUserMessage(text)
		req.ErrorIs(err, widget.ErrEmptyMessage)
		req.True(widget.IsRejection(err))
	}
	req.Len(s.Snapshot().Messages, 1)
}

func TestSendOutsideChatIsRejected(t *testing.T) {
	req := require.New(t)
	s := newSession(t, widget.Options{Driver: echoDriver("ok")})
	req.NoError(s.SignIn(context.Background(), "Acme Realty"))
	req.NoError(s.Toggle())

	req.ErrorIs(s.SendUserMessage("hello"), widget.ErrInvalidTransition)
	req.Empty(s.Snapshot().Messages)
}

func TestSendKeepsExactText(t *testing.T) {
	req := require.New(t)
	s := newSession(t, widget.Options{Driver: echoDriver("ok")})
	openChat(t, s)

	req.NoError(s.SendUserMessage("  padded question  "))
	req.Equal(turn{widget.SenderUser, "  padded question  "}, turns(s.Snapshot().Messages)[1])
}

func TestSuggestionsComeFromLatestBotMessageOnly(t *testing.T) {
	req := require.New(t)
	replies := []string{"Sure. [Show details, What's next]", "Thanks for your message."}
	calls := 0
	driver := funcDriver(func(context.Context, []widget.Message, string) (string, error) {
		reply := replies[calls]
		calls++
		return reply, nil
	})
	s := newSession(t, widget.Options{Driver: driver})
	openChat(t, s)

	req.NoError(s.SendUserMessage("first"))
	s.Wait()
	req.Equal([]string{"Show details", "What's next"}, s.Suggestions())

	req.NoError(s.SendUserMessage("second"))
	s.Wait()
	req.Empty(s.Suggestions())
	req.Empty(s.Snapshot().Suggestions)
}

func TestActivateSuggestionMatchesTyping(t *testing.T) {
	req := require.New(t)
	driver := funcDriver(func(_ context.Context, _ []widget.Message, userText string) (string, error) {
		if userText == "Show details" {
			return "Here they are.", nil
		}
		return "Sure. [Show details, What's next]", nil
	})

	clicked := newSession(t, widget.Options{Driver: driver})
	typed := newSession(t, widget.Options{Driver: driver})
	for _, s := range []*widget.Session{clicked, typed} {
		openChat(t, s)
		req.NoError(s.SendUserMessage("leads"))
		s.Wait()
	}

	req.NoError(clicked.ActivateSuggestion(0))
	req.NoError(typed.SendUserMessage("Show details"))
	clicked.Wait()
	typed.Wait()

	req.Equal(turns(typed.Snapshot().Messages), turns(clicked.Snapshot().Messages))
	req.Equal(turn{widget.SenderBot, "Here they are."}, turns(clicked.Snapshot().Messages)[4])

	req.ErrorIs(clicked.ActivateSuggestion(0), widget.ErrUnknownSuggestion)
	req.ErrorIs(typed.ActivateSuggestion(-1), widget.ErrUnknownSuggestion)
}

func TestDriverErrorAppendsNothing(t *testing.T) {
	req := require.New(t)
	s := newSession(t, widget.Options{Driver: funcDriver(func(context.Context, []widget.Message, string) (string, error) {
		return "", errors.New("backend down")
	})})
	openChat(t, s)

	req.NoError(s.SendUserMessage("anyone there?"))
	s.Wait()
	req.Equal([]turn{
		{widget.SenderBot, widget.DefaultGreeting},
		{widget.SenderUser, "anyone there?"},
	}, turns(s.Snapshot().Messages))
}

func TestRepliesAppendInCompletionOrder(t *testing.T) {
	req := require.New(t)
	release := map[string]chan struct{}{
		"first":  make(chan struct{}),
		"second": make(chan struct{}),
	}
	driver := funcDriver(func(_ context.Context, _ []widget.Message, userText string) (string, error) {
		<-release[userText]
		return "re: " + userText, nil
	})
	s := newSession(t, widget.Options{Driver: driver})
	openChat(t, s)

	req.NoError(s.SendUserMessage("first"))
	req.NoError(s.SendUserMessage("second"))

	close(release["second"])
	req.Eventually(func() bool { return len(s.Snapshot().Messages) == 4 }, time.Second, 5*time.Millisecond)
	close(release["first"])
	s.Wait()

	req.Equal([]turn{
		{widget.SenderBot, widget.DefaultGreeting},
		{widget.SenderUser, "first"},
		{widget.SenderUser, "second"},
		{widget.SenderBot, "re: second"},
		{widget.SenderBot, "re: first"},
	}, turns(s.Snapshot().Messages))
}

func TestSubscribeDeliversLatestSnapshot(t *testing.T) {
	req := require.New(t)
	s := newSession(t, widget.Options{})
	updates, unsubscribe := s.Subscribe()

	req.NoError(s.SignIn(context.Background(), "Acme Realty"))
	req.NoError(s.Toggle())

	snap := <-updates
	req.Equal(widget.PanelWelcome, snap.Panel)
	select {
	case extra := <-updates:
		t.Fatalf("unexpected stale snapshot: %+v", extra)
	default:
	}

	unsubscribe()
	_, ok := <-updates
	req.False(ok)
	unsubscribe()
}

func TestTranscriptRecordsEveryMessage(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	transcript := mocks.NewMockTranscript(ctrl)

	var saved []turn
	transcript.EXPECT().
		SaveMessage(gomock.Any(), "test-session", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg widget.Message) error {
			saved = append(saved, turn{msg.Sender, msg.Text})
			req.NotEmpty(msg.ID)
			req.False(msg.CreatedAt.IsZero())
			return nil
		}).
		Times(3)

	s := newSession(t, widget.Options{Driver: echoDriver("ok"), Transcript: transcript})
	openChat(t, s)
	req.NoError(s.SendUserMessage("hello"))
	s.Wait()

	req.Equal([]turn{
		{widget.SenderBot, widget.DefaultGreeting},
		{widget.SenderUser, "hello"},
		{widget.SenderBot, "ok"},
	}, saved)
}

func TestTranscriptFailureDoesNotBlockChat(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	transcript := mocks.NewMockTranscript(ctrl)
	transcript.EXPECT().SaveMessage(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("db down")).AnyTimes()

	s := newSession(t, widget.Options{Driver: echoDriver("ok"), Transcript: transcript})
	openChat(t, s)
	req.NoError(s.SendUserMessage("hello"))
	s.Wait()
	req.Len(s.Snapshot().Messages, 3)
}
