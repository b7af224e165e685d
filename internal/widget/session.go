package widget

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vovarama1992/homelead-widget/internal/suggest"
)

const DefaultGreeting = "Hi there! What brings you here today?"

type Options struct {
	Greeting   string
	Driver     Driver
	Directory  Directory
	Transcript Transcript
}

// Session is one widget instance: identity, panel and message history.
// Transitions are methods; rendering code reads Snapshot after each one.
type Session struct {
	id         string
	ctx        context.Context
	greeting   string
	driver     Driver
	directory  Directory
	transcript Transcript
	now        func() time.Time

	mu          sync.Mutex
	company     string
	panel       Panel
	chatStarted bool
	log         *Log
	lastSeen    time.Time
	subs        map[int]chan Snapshot
	nextSub     int
	inflight    int

	pending sync.WaitGroup
}

// NewSession creates a closed, signed-out session. Driver calls run on ctx,
// so they outlive the request that scheduled them.
func NewSession(ctx context.Context, id string, opts Options) *Session {
	if opts.Greeting == "" {
		opts.Greeting = DefaultGreeting
	}
	if opts.Directory == nil {
		opts.Directory = OpenDirectory{}
	}
	if opts.Transcript == nil {
		opts.Transcript = NopTranscript{}
	}

	s := &Session{
		id:         id,
		ctx:        ctx,
		greeting:   opts.Greeting,
		driver:     opts.Driver,
		directory:  opts.Directory,
		transcript: opts.Transcript,
		now:        time.Now,
		panel:      PanelClosed,
		log:        NewLog(),
		subs:       make(map[int]chan Snapshot),
	}
	s.lastSeen = s.now()
	return s
}

func (s *Session) ID() string {
	return s.id
}

// SignIn sets the company identity once. It does not open the widget.
func (s *Session) SignIn(ctx context.Context, identity string) error {
	if err := checkIdentity(identity); err != nil {
		return err
	}
	if s.signedIn() {
		return ErrAlreadySignedIn
	}

	if err := s.directory.Resolve(ctx, identity); err != nil {
		return fmt.Errorf("resolve company %q: %w", identity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.company != "" {
		return ErrAlreadySignedIn
	}
	s.company = identity
	s.changedLocked()

	log.Printf("[widget] session=%s signed in company=%q", s.id, identity)
	return nil
}

// Toggle opens a closed widget on the welcome panel, or straight on the chat
// once it has been started, and closes an open one.
func (s *Session) Toggle() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.company == "" {
		return ErrNotSignedIn
	}

	switch s.panel {
	case PanelClosed:
		if s.chatStarted {
			s.panel = PanelChat
		} else {
			s.panel = PanelWelcome
		}
	default:
		s.panel = PanelClosed
	}
	s.changedLocked()
	return nil
}

// Close hides the widget. Closing a closed widget changes nothing.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.company == "" {
		return ErrNotSignedIn
	}
	if s.panel == PanelClosed {
		return nil
	}
	s.panel = PanelClosed
	s.changedLocked()
	return nil
}

// StartChat leaves the welcome panel. The greeting is seeded only the first
// time.
func (s *Session) StartChat() error {
	s.mu.Lock()
	if s.company == "" {
		s.mu.Unlock()
		return ErrNotSignedIn
	}
	if s.panel != PanelWelcome {
		s.mu.Unlock()
		return fmt.Errorf("start chat from %s: %w", s.panel, ErrInvalidTransition)
	}

	s.panel = PanelChat
	var seeded *Message
	if !s.chatStarted {
		s.chatStarted = true
		msg := s.appendLocked(SenderBot, s.greeting)
		seeded = &msg
	}
	s.changedLocked()
	s.mu.Unlock()

	if seeded != nil {
		s.record(*seeded)
	}
	return nil
}

// SendUserMessage appends text as a user message and asks the driver for a
// reply in the background. Blank text is rejected without any change.
func (s *Session) SendUserMessage(text string) error {
	s.mu.Lock()
	if s.panel != PanelChat {
		s.mu.Unlock()
		return fmt.Errorf("send from %s: %w", s.panel, ErrInvalidTransition)
	}
	if err := checkMessage(text); err != nil {
		s.mu.Unlock()
		return err
	}

	msg := s.appendLocked(SenderUser, text)
	history := s.log.Messages()
	s.inflight++
	s.pending.Add(1)
	s.changedLocked()
	s.mu.Unlock()

	s.record(msg)
	go s.awaitReply(history, text)
	return nil
}

// ActivateSuggestion sends the index-th current suggestion as if the user had
// typed it.
func (s *Session) ActivateSuggestion(index int) error {
	questions := s.Suggestions()
	if index < 0 || index >= len(questions) {
		return fmt.Errorf("suggestion %d: %w", index, ErrUnknownSuggestion)
	}
	return s.SendUserMessage(questions[index])
}

// Suggestions decodes the latest bot message only.
func (s *Session) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestionsLocked()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that always holds the latest snapshot after a
// change. Older undelivered snapshots are dropped.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Wait blocks until every scheduled driver call has returned.
func (s *Session) Wait() {
	s.pending.Wait()
}

// Busy reports whether a driver call is in flight or a subscriber is
// attached. A busy session is never idle.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0 || len(s.subs) > 0
}

// LastSeen is the time of the latest state change.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) awaitReply(history []Message, userText string) {
	defer s.pending.Done()

	reply, err := s.driver.Submit(s.ctx, history, userText)

	s.mu.Lock()
	s.inflight--
	if err != nil {
		s.lastSeen = s.now()
		s.mu.Unlock()
		log.Printf("[widget] session=%s driver error: %v", s.id, err)
		return
	}
	msg := s.appendLocked(SenderBot, reply)
	s.changedLocked()
	s.mu.Unlock()

	s.record(msg)
}

func (s *Session) signedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.company != ""
}

func (s *Session) appendLocked(sender Sender, text string) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	s.log.Append(msg)
	return msg
}

func (s *Session) record(msg Message) {
	if err := s.transcript.SaveMessage(s.ctx, s.id, msg); err != nil {
		log.Printf("[widget] session=%s transcript error: %v", s.id, err)
	}
}

func (s *Session) suggestionsLocked() []string {
	latest, ok := s.log.LatestBySender(SenderBot)
	if !ok {
		return nil
	}
	return suggest.Decode(latest.Text)
}

func (s *Session) snapshotLocked() Snapshot {
	suggestions := s.suggestionsLocked()
	if suggestions == nil {
		suggestions = []string{}
	}
	return Snapshot{
		SessionID:       s.id,
		Company:         s.company,
		SignedIn:        s.company != "",
		ToggleAvailable: s.company != "",
		Panel:           s.panel,
		Messages:        s.log.Messages(),
		Suggestions:     suggestions,
	}
}

func (s *Session) changedLocked() {
	s.lastSeen = s.now()
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
