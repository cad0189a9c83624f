// Package relay validates chat requests and forwards them to a completion provider.
//
// The service is stateless: every call to Relay handles exactly one exchange and retains nothing afterwards, so a
// single Service may be shared by any number of concurrent requests.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cchalm/relaychat/internal/ai"
	"github.com/cchalm/relaychat/internal/telemetry"
)

// Request is one exchange as submitted by a client. Both fields are kept raw so that malformed values can be judged
// by the relay's own policy instead of failing JSON decoding
type Request struct {
	Message json.RawMessage `json:"message"`
	History json.RawMessage `json:"history"`
}

// Response is the result of a successful exchange
type Response struct {
	Reply string `json:"reply"`
}

// Service relays one exchange at a time to a completion provider
type Service struct {
	provider ai.Provider
	tracer   trace.Tracer

	model       string
	temperature float64
	maxTokens   int64
}

// NewService creates a relay that requests the given model from provider with the default sampling parameters. A nil
// tracer records nothing
func NewService(provider ai.Provider, model string, tracer trace.Tracer) *Service {
	if tracer == nil {
		tracer = telemetry.NoopTracer()
	}
	return &Service{
		provider: provider,
		tracer:   tracer,

		model:       model,
		temperature: ai.DefaultTemperature,
		maxTokens:   ai.DefaultMaxTokens,
	}
}

// Relay validates the request, forwards the assembled prompt to the provider in a single attempt, and returns the
// trimmed reply. Failures are always returned as *Error
func (s *Service) Relay(ctx context.Context, req Request) (Response, error) {
	requestID := telemetry.RequestID(ctx)
	ctx, span := s.tracer.Start(ctx, "relay.exchange", trace.WithAttributes(
		attribute.String("relay.request_id", requestID),
		attribute.String("relay.model", s.model),
	))
	defer span.End()

	message, ok := decodeMessage(req.Message)
	if !ok {
		relayErr := badRequest()
		span.SetStatus(codes.Error, relayErr.Kind.String())
		return Response{}, relayErr
	}

	history, dropped := ai.SanitizeHistory(req.History)
	if dropped > 0 {
		log.Printf("[%s] Dropped %d invalid history entries", requestID, dropped)
	}
	span.SetAttributes(
		attribute.Int("relay.history_turns", len(history)),
		attribute.Int("relay.history_dropped", dropped),
	)

	prompt := ai.Prompt{
		Model:       s.model,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		Messages:    ai.BuildMessages(history, message),
	}

	reply, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		log.Printf("[%s] Chat relay error: %v", requestID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, KindUpstreamError.String())
		return Response{}, upstreamError(err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		log.Printf("[%s] Provider returned no content", requestID)
		span.SetStatus(codes.Error, KindUpstreamEmpty.String())
		return Response{}, upstreamEmpty()
	}

	span.SetAttributes(attribute.Int("relay.reply_length", len(reply)))
	return Response{Reply: reply}, nil
}

// decodeMessage accepts only a non-empty JSON string
func decodeMessage(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var message string
	if err := json.Unmarshal(raw, &message); err != nil {
		return "", false
	}
	return message, message != ""
}
