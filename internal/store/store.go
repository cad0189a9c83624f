// Package store holds the client-side state of one chat session.
package store

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/cchalm/relaychat/internal/ai"
)

const (
	// FallbackReply is shown when the relay answers without a reply
	FallbackReply = "Sorry, I can't answer right now."
	// ConnectionErrorMessage is shown when an exchange with the relay fails
	ConnectionErrorMessage = "⚠️ Could not connect to the server. Please try again later."
)

// Relay sends one exchange to the relay service
type Relay interface {
	Chat(ctx context.Context, message string, history []ai.Turn) (string, error)
}

// State is a read-only snapshot of a Store
type State struct {
	Turns    ai.Conversation
	Input    string
	InFlight bool
	// Error is a dismissible, non-fatal message for the user. Empty when there is none
	Error string
}

// Store owns the authoritative conversation of a session and runs at most one exchange at a time
type Store struct {
	relay Relay

	mu       sync.Mutex
	turns    ai.Conversation
	input    string
	inFlight bool
	err      string
	// generation is bumped by Reset so replies to exchanges started before a reset are discarded
	generation int
}

// New creates a store whose conversation starts with the greeting
func New(relay Relay) *Store {
	return &Store{
		relay: relay,
		turns: ai.NewConversation(),
	}
}

// Submit sends text as the next user message and blocks until the exchange completes. It returns false without doing
// anything if text is blank or another exchange is already in flight.
//
// The user turn is appended before the relay is contacted. On success the reply, or FallbackReply if it is empty, is
// appended as an assistant turn; on failure only the error message is set and the conversation keeps the user turn
func (s *Store) Submit(ctx context.Context, text string) bool {
	s.mu.Lock()
	if strings.TrimSpace(text) == "" || s.inFlight {
		s.mu.Unlock()
		return false
	}

	history := s.turns.Clone()
	s.turns = append(s.turns, ai.NewUserTurn(text))
	s.input = ""
	s.err = ""
	s.inFlight = true
	generation := s.generation
	s.mu.Unlock()

	reply, err := s.relay.Chat(ctx, text, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if generation != s.generation {
		log.Printf("Discarding reply to an exchange started before the conversation was reset")
		return true
	}
	if err != nil {
		log.Printf("Chat exchange failed: %v", err)
		s.err = ConnectionErrorMessage
		return true
	}
	if reply == "" {
		reply = FallbackReply
	}
	s.turns = append(s.turns, ai.NewAssistantTurn(reply))
	return true
}

// Reset discards the conversation and starts over from the greeting, clearing pending input and errors
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = ai.NewConversation()
	s.input = ""
	s.err = ""
	s.generation++
}

// SetInput records the user's pending, not yet submitted input
func (s *Store) SetInput(input string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = input
}

// DismissError clears the error message
func (s *Store) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Turns:    s.turns.Clone(),
		Input:    s.input,
		InFlight: s.inFlight,
		Error:    s.err,
	}
}
