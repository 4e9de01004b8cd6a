package assistant

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const Greeting = "Welcome to Nexus. I'm your AI Strategist. How can I help elevate your brand today?"

type Message struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Reply is what an Advisor resolves to. Fallback marks canned text that
// replaced a failed model call.
type Reply struct {
	Text     string
	Fallback bool
}

// Advisor answers marketing questions. Implementations never fail; they
// substitute fallback text instead.
type Advisor interface {
	Advise(ctx context.Context, prompt string) Reply
}

type AdvisorFunc func(ctx context.Context, prompt string) Reply

func (f AdvisorFunc) Advise(ctx context.Context, prompt string) Reply { return f(ctx, prompt) }

// Event is pushed to subscribers whenever the transcript or the awaiting
// flag changes.
type Event struct {
	Seq      int      `json:"seq"`
	Message  *Message `json:"message,omitempty"`
	Awaiting bool     `json:"awaiting"`
}

// Session is one visitor's chat: an append-only transcript and a single
// in-flight reply.
type Session struct {
	id      string
	advisor Advisor
	timeout time.Duration
	log     *zap.Logger

	mu       sync.Mutex
	messages []Message
	input    string
	awaiting bool
	subs     map[int]chan Event
	nextSub  int
}

type Options struct {
	// ReplyTimeout bounds a single advisor call. Zero disables it.
	ReplyTimeout time.Duration
	Logger       *zap.Logger
}

func NewSession(id string, advisor Advisor, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		id:       id,
		advisor:  advisor,
		timeout:  opts.ReplyTimeout,
		log:      log,
		messages: []Message{{Role: RoleAssistant, Content: Greeting}},
		subs:     make(map[int]chan Event),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

func (s *Session) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()
}

func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Send appends text as a user message and asks the advisor in the
// background. Blank text or a reply already in flight makes it a no-op.
// The channel receives the assistant message once it is in the transcript.
func (s *Session) Send(text string) (<-chan Message, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	s.mu.Lock()
	if s.awaiting {
		s.mu.Unlock()
		return nil, false
	}
	user := Message{Role: RoleUser, Content: text}
	s.messages = append(s.messages, user)
	s.input = ""
	s.awaiting = true
	s.publishLocked(&user)
	s.mu.Unlock()

	done := make(chan Message, 1)
	go s.reply(text, done)
	return done, true
}

// Ask is the blocking form of Send.
func (s *Session) Ask(ctx context.Context, text string) (Message, bool) {
	done, ok := s.Send(text)
	if !ok {
		return Message{}, false
	}
	select {
	case m := <-done:
		return m, true
	case <-ctx.Done():
		return Message{}, false
	}
}

func (s *Session) reply(prompt string, done chan<- Message) {
	r := s.advise(prompt)
	msg := Message{Role: RoleAssistant, Content: r.Text, Fallback: r.Fallback}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.awaiting = false
	s.publishLocked(&msg)
	s.mu.Unlock()

	if r.Fallback {
		s.log.Warn("assistant replied with fallback", zap.String("session", s.id))
	}
	done <- msg
	close(done)
}

// advise runs the advisor detached from any caller context. A panic or an
// expired ReplyTimeout resolves to FallbackBusy so awaiting is always cleared.
func (s *Session) advise(prompt string) Reply {
	if s.advisor == nil {
		return Reply{Text: FallbackBusy, Fallback: true}
	}
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result := make(chan Reply, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("advisor panicked", zap.String("session", s.id), zap.Any("panic", rec))
				result <- Reply{Text: FallbackBusy, Fallback: true}
			}
		}()
		result <- s.advisor.Advise(ctx, prompt)
	}()

	select {
	case r := <-result:
		if ctx.Err() == nil {
			return r
		}
	case <-ctx.Done():
	}
	s.log.Warn("advisor timed out", zap.String("session", s.id), zap.Duration("timeout", s.timeout))
	return Reply{Text: FallbackBusy, Fallback: true}
}

// Subscribe streams transcript events until cancel is called. The current
// transcript is replayed first.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Event, len(s.messages)+32)
	for i := range s.messages {
		m := s.messages[i]
		ch <- Event{Seq: i, Message: &m, Awaiting: s.awaiting}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

func (s *Session) publishLocked(m *Message) {
	evt := Event{Seq: len(s.messages) - 1, Message: m, Awaiting: s.awaiting}
	for id, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Slow subscriber: drop it rather than block the session.
			delete(s.subs, id)
			close(ch)
		}
	}
}
