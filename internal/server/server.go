// Package server exposes the relay over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/cchalm/relaychat/internal/relay"
)

const (
	// DefaultPort is the port the server listens on when none is configured
	DefaultPort = 5000

	// MaxRequestBodySize caps the size of a chat request body
	MaxRequestBodySize = 1 << 20

	shutdownTimeout = 10 * time.Second
)

// Relayer handles one chat exchange
type Relayer interface {
	Relay(ctx context.Context, req relay.Request) (relay.Response, error)
}

// Server serves the chat API
type Server struct {
	relay   Relayer
	handler http.Handler
}

// New creates a server that forwards chat requests to r
func New(r Relayer) *Server {
	s := &Server{relay: r}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = Chain(
		CORSMiddleware(DefaultCORSConfig()),
		RequestIDMiddleware(),
		LoggingMiddleware(log.Default()),
		RecoveryMiddleware(),
	)(mux)

	return s
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler: s.handler,
		BaseContext: func(net.Listener) context.Context {
			// In-flight provider calls are not cancelled by shutdown; Shutdown waits for them instead
			return context.WithoutCancel(ctx)
		},
	}

	errs := make(chan error, 1)
	go func() {
		log.Printf("Server is running on http://%s", listener.Addr())
		errs <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req relay.Request
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		// An unreadable body carries no message, which the relay rejects
		log.Printf("[%s] Failed to decode chat request body: %v", requestIDOf(r), err)
		req = relay.Request{}
	}

	resp, err := s.relay.Relay(r.Context(), req)
	if err != nil {
		var relayErr *relay.Error
		if errors.As(err, &relayErr) {
			writeJSON(w, relayErr.Status, errorBody{Error: relayErr.ClientMsg})
			return
		}
		log.Printf("[%s] Chat endpoint error: %v", requestIDOf(r), err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: relay.FailedToGenerateReply})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response body: %v", err)
	}
}
