package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cchalm/relaychat/internal/ai"
)

type chatCall struct {
	message string
	history []ai.Turn
}

// relayStub answers every exchange with a fixed reply or error. If gate is set, Chat blocks until it is closed
type relayStub struct {
	reply string
	err   error
	gate  chan struct{}
	// started is signalled when Chat begins, if set
	started chan struct{}

	mu    sync.Mutex
	calls []chatCall
}

func (rs *relayStub) Chat(_ context.Context, message string, history []ai.Turn) (string, error) {
	rs.mu.Lock()
	rs.calls = append(rs.calls, chatCall{message: message, history: history})
	rs.mu.Unlock()

	if rs.started != nil {
		rs.started <- struct{}{}
	}
	if rs.gate != nil {
		<-rs.gate
	}
	return rs.reply, rs.err
}

func (rs *relayStub) callCount() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.calls)
}

func TestNew_StartsWithGreeting(t *testing.T) {
	s := New(&relayStub{})

	state := s.Snapshot()
	require.Len(t, state.Turns, 1)
	assert.Equal(t, ai.Greeting(), state.Turns[0])
	assert.False(t, state.InFlight)
	assert.Empty(t, state.Error)
}

func TestSubmit_Success(t *testing.T) {
	relay := &relayStub{reply: "hello!"}
	s := New(relay)
	before := s.Snapshot()
	s.SetInput("hi")

	accepted := s.Submit(context.Background(), "hi")

	require.True(t, accepted)
	state := s.Snapshot()
	require.Len(t, state.Turns, len(before.Turns)+2)
	assert.Equal(t, ai.NewUserTurn("hi"), state.Turns[1])
	assert.Equal(t, ai.NewAssistantTurn("hello!"), state.Turns[2])
	assert.False(t, state.InFlight)
	assert.Empty(t, state.Input)
	assert.Empty(t, state.Error)

	// History is the conversation as it was before the user turn was appended
	require.Len(t, relay.calls, 1)
	assert.Equal(t, "hi", relay.calls[0].message)
	assert.Equal(t, []ai.Turn{ai.Greeting()}, relay.calls[0].history)
}

func TestSubmit_SendsTextUntrimmed(t *testing.T) {
	relay := &relayStub{reply: "ok"}
	s := New(relay)

	s.Submit(context.Background(), "  spaced  ")

	assert.Equal(t, "  spaced  ", relay.calls[0].message)
	assert.Equal(t, ai.NewUserTurn("  spaced  "), s.Snapshot().Turns[1])
}

func TestSubmit_HistoryGrowsWithEachExchange(t *testing.T) {
	relay := &relayStub{reply: "answer"}
	s := New(relay)

	s.Submit(context.Background(), "one")
	s.Submit(context.Background(), "two")

	require.Len(t, relay.calls, 2)
	assert.Equal(t, []ai.Turn{
		ai.Greeting(),
		ai.NewUserTurn("one"),
		ai.NewAssistantTurn("answer"),
	}, relay.calls[1].history)
	assert.Len(t, s.Snapshot().Turns, 5)
}

func TestSubmit_EmptyReplyUsesFallback(t *testing.T) {
	s := New(&relayStub{reply: ""})

	s.Submit(context.Background(), "hi")

	turns := s.Snapshot().Turns
	assert.Equal(t, ai.NewAssistantTurn(FallbackReply), turns[len(turns)-1])
}

func TestSubmit_Failure(t *testing.T) {
	s := New(&relayStub{err: errors.New("connection refused")})

	accepted := s.Submit(context.Background(), "hi")

	require.True(t, accepted)
	state := s.Snapshot()
	assert.Equal(t, ai.Conversation{ai.Greeting(), ai.NewUserTurn("hi")}, state.Turns)
	assert.Equal(t, ConnectionErrorMessage, state.Error)
	assert.False(t, state.InFlight)
}

func TestSubmit_RetryAfterFailure(t *testing.T) {
	relay := &relayStub{err: errors.New("connection refused")}
	s := New(relay)
	s.Submit(context.Background(), "hi")

	relay.err = nil
	relay.reply = "there you are"
	s.Submit(context.Background(), "hi again")

	state := s.Snapshot()
	assert.Empty(t, state.Error)
	assert.Equal(t, ai.Conversation{
		ai.Greeting(),
		ai.NewUserTurn("hi"),
		ai.NewUserTurn("hi again"),
		ai.NewAssistantTurn("there you are"),
	}, state.Turns)
}

func TestSubmit_BlankTextIsNoOp(t *testing.T) {
	relay := &relayStub{reply: "unused"}
	s := New(relay)

	for _, text := range []string{"", "   ", "\n\t"} {
		assert.False(t, s.Submit(context.Background(), text))
	}

	assert.Len(t, s.Snapshot().Turns, 1)
	assert.Equal(t, 0, relay.callCount())
}

func TestSubmit_WhileInFlightIsNoOp(t *testing.T) {
	relay := &relayStub{reply: "first reply", gate: make(chan struct{}), started: make(chan struct{}, 1)}
	s := New(relay)

	done := make(chan bool)
	go func() { done <- s.Submit(context.Background(), "first") }()
	<-relay.started

	state := s.Snapshot()
	require.True(t, state.InFlight)
	lengthDuringExchange := len(state.Turns)

	assert.False(t, s.Submit(context.Background(), "second"))
	assert.Len(t, s.Snapshot().Turns, lengthDuringExchange)
	assert.Equal(t, 1, relay.callCount())

	close(relay.gate)
	require.True(t, <-done)

	state = s.Snapshot()
	assert.False(t, state.InFlight)
	assert.Equal(t, ai.Conversation{
		ai.Greeting(),
		ai.NewUserTurn("first"),
		ai.NewAssistantTurn("first reply"),
	}, state.Turns)
}

func TestReset(t *testing.T) {
	s := New(&relayStub{err: errors.New("down")})
	s.Submit(context.Background(), "one")
	s.Submit(context.Background(), "two")
	s.SetInput("draft")

	s.Reset()

	state := s.Snapshot()
	require.Len(t, state.Turns, 1)
	assert.Equal(t, ai.RoleAssistant, state.Turns[0].Role)
	assert.Empty(t, state.Input)
	assert.Empty(t, state.Error)
}

func TestReset_FreshStore(t *testing.T) {
	s := New(&relayStub{})

	s.Reset()

	assert.Equal(t, ai.NewConversation(), s.Snapshot().Turns)
}

func TestReset_DuringExchangeDiscardsReply(t *testing.T) {
	relay := &relayStub{reply: "stale", gate: make(chan struct{}), started: make(chan struct{}, 1)}
	s := New(relay)

	done := make(chan bool)
	go func() { done <- s.Submit(context.Background(), "question") }()
	<-relay.started

	s.Reset()
	close(relay.gate)
	<-done

	state := s.Snapshot()
	assert.Equal(t, ai.NewConversation(), state.Turns)
	assert.False(t, state.InFlight)
}

func TestDismissError(t *testing.T) {
	s := New(&relayStub{err: errors.New("down")})
	s.Submit(context.Background(), "hi")
	require.NotEmpty(t, s.Snapshot().Error)

	s.DismissError()

	assert.Empty(t, s.Snapshot().Error)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := New(&relayStub{})

	state := s.Snapshot()
	state.Turns[0] = ai.NewUserTurn("tampered")

	assert.Equal(t, ai.Greeting(), s.Snapshot().Turns[0])
}
