package assistant

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatedAdvisor struct {
	prompts chan string
	replies chan Reply
}

func newGatedAdvisor() *gatedAdvisor {
	return &gatedAdvisor{prompts: make(chan string, 4), replies: make(chan Reply, 4)}
}

func (a *gatedAdvisor) Advise(_ context.Context, prompt string) Reply {
	a.prompts <- prompt
	return <-a.replies
}

func waitMessage(t *testing.T, done <-chan Message) Message {
	t.Helper()
	select {
	case m := <-done:
		return m
	case <-time.After(time.Second):
		t.Fatalf("reply did not arrive")
		return Message{}
	}
}

func TestNewSessionStartsWithGreeting(t *testing.T) {
	s := NewSession("s1", newGatedAdvisor(), Options{})
	got := s.Transcript()
	require.Len(t, got, 1)
	assert.Equal(t, Message{Role: RoleAssistant, Content: Greeting}, got[0])
	assert.False(t, s.Awaiting())
}

func TestSendBlankIsNoop(t *testing.T) {
	s := NewSession("s1", newGatedAdvisor(), Options{})
	for _, in := range []string{"", "   ", "\n\t"} {
		_, ok := s.Send(in)
		assert.False(t, ok)
	}
	assert.Len(t, s.Transcript(), 1)
}

func TestSendTwiceWhileInFlight(t *testing.T) {
	adv := newGatedAdvisor()
	s := NewSession("s1", adv, Options{})
	s.SetInput("hello")

	done, ok := s.Send("hello")
	require.True(t, ok)
	_, again := s.Send("hello")
	assert.False(t, again)

	got := s.Transcript()
	require.Len(t, got, 2)
	assert.Equal(t, Message{Role: RoleUser, Content: "hello"}, got[1])
	assert.True(t, s.Awaiting())
	assert.Empty(t, s.Input())

	assert.Equal(t, "hello", <-adv.prompts)
	adv.replies <- Reply{Text: "Lead with story."}
	reply := waitMessage(t, done)
	assert.Equal(t, RoleAssistant, reply.Role)

	got = s.Transcript()
	require.Len(t, got, 3)
	assert.Equal(t, "Lead with story.", got[2].Content)
	assert.False(t, s.Awaiting())
}

func TestSendKeepsLiteralInput(t *testing.T) {
	adv := AdvisorFunc(func(_ context.Context, p string) Reply { return Reply{Text: "ok"} })
	s := NewSession("s1", adv, Options{})
	m, ok := s.Ask(context.Background(), "  spaced  ")
	require.True(t, ok)
	assert.Equal(t, "ok", m.Content)
	assert.Equal(t, "  spaced  ", s.Transcript()[1].Content)
}

func TestAdvisorPanicBecomesFallback(t *testing.T) {
	adv := AdvisorFunc(func(context.Context, string) Reply { panic("nope") })
	s := NewSession("s1", adv, Options{})
	m, ok := s.Ask(context.Background(), "help")
	require.True(t, ok)
	assert.Equal(t, FallbackBusy, m.Content)
	assert.True(t, m.Fallback)
	assert.False(t, s.Awaiting())
}

func TestHungAdvisorTimesOutToFallback(t *testing.T) {
	var calls atomic.Int32
	adv := AdvisorFunc(func(ctx context.Context, _ string) Reply {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return Reply{Text: "too late"}
		}
		return Reply{Text: "Lead with story."}
	})
	s := NewSession("s1", adv, Options{ReplyTimeout: 20 * time.Millisecond})

	done, ok := s.Send("help")
	require.True(t, ok)
	m := waitMessage(t, done)
	assert.Equal(t, FallbackBusy, m.Content)
	assert.True(t, m.Fallback)
	assert.False(t, s.Awaiting())
	assert.Len(t, s.Transcript(), 3)

	done, ok = s.Send("again")
	require.True(t, ok)
	assert.Equal(t, "Lead with story.", waitMessage(t, done).Content)
	assert.Len(t, s.Transcript(), 5)
}

func TestStorePassesReplyTimeout(t *testing.T) {
	adv := AdvisorFunc(func(ctx context.Context, _ string) Reply {
		<-ctx.Done()
		return Reply{Text: "too late"}
	})
	st := NewStore(adv, StoreOptions{ReplyTimeout: 20 * time.Millisecond})
	m, ok := st.Create().Ask(context.Background(), "help")
	require.True(t, ok)
	assert.Equal(t, FallbackBusy, m.Content)
}

func TestSubscribeReplaysAndStreams(t *testing.T) {
	adv := newGatedAdvisor()
	s := NewSession("s1", adv, Options{})
	events, cancel := s.Subscribe()
	defer cancel()

	first := <-events
	assert.Equal(t, 0, first.Seq)
	assert.Equal(t, Greeting, first.Message.Content)

	done, ok := s.Send("brief")
	require.True(t, ok)
	user := <-events
	assert.Equal(t, 1, user.Seq)
	assert.True(t, user.Awaiting)

	<-adv.prompts
	adv.replies <- Reply{Text: "answer"}
	waitMessage(t, done)
	reply := <-events
	assert.Equal(t, 2, reply.Seq)
	assert.False(t, reply.Awaiting)
	assert.Equal(t, "answer", reply.Message.Content)

	cancel()
	_, open := <-events
	assert.False(t, open)
}

type textModelFunc func(ctx context.Context, system, prompt string, temp float32) (string, error)

func (f textModelFunc) GenerateText(ctx context.Context, system, prompt string, temp float32) (string, error) {
	return f(ctx, system, prompt, temp)
}

func TestModelAdvisorFallbacks(t *testing.T) {
	failing := NewModelAdvisor(textModelFunc(func(context.Context, string, string, float32) (string, error) {
		return "", errors.New("quota")
	}), nil)
	assert.Equal(t, Reply{Text: FallbackBusy, Fallback: true}, failing.Advise(context.Background(), "x"))

	empty := NewModelAdvisor(textModelFunc(func(context.Context, string, string, float32) (string, error) {
		return " ", nil
	}), nil)
	assert.Equal(t, Reply{Text: FallbackQuiet, Fallback: true}, empty.Advise(context.Background(), "x"))

	var gotSystem string
	var gotTemp float32
	ok := NewModelAdvisor(textModelFunc(func(_ context.Context, system, _ string, temp float32) (string, error) {
		gotSystem, gotTemp = system, temp
		return "Be bold.", nil
	}), nil)
	assert.Equal(t, Reply{Text: "Be bold."}, ok.Advise(context.Background(), "x"))
	assert.Contains(t, gotSystem, "Nexus Creative")
	assert.InDelta(t, 0.8, gotTemp, 1e-6)
}

func TestStore(t *testing.T) {
	st := NewStore(newGatedAdvisor(), StoreOptions{MaxSessions: 2, TTL: time.Minute})
	a := st.Create()
	got, err := st.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = st.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	b := st.GetOrCreate("")
	assert.NotEqual(t, a.ID(), b.ID())
	st.Create()
	assert.Equal(t, 2, st.Len())
	_, err = st.Get(a.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
