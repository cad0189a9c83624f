// Package client talks to the relay's HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cchalm/relaychat/internal/ai"
)

// DefaultBaseURL is where the relay listens by default
const DefaultBaseURL = "http://localhost:5000"

const chatPath = "/api/chat"

// NetworkError means the relay could not be reached or did not answer with a usable response
type NetworkError struct {
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("relay responded with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("failed to reach relay: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client sends chat exchanges to a relay
type Client struct {
	endpoint   string
	httpClient *http.Client
	sessionID  string
}

// New creates a client for the relay at baseURL. A nil httpClient means http.DefaultClient
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + chatPath,
		httpClient: httpClient,
	}
}

// WithSessionID tags every request with a session ID header for correlation in relay logs
func (c *Client) WithSessionID(id string) *Client {
	c.sessionID = id
	return c
}

type chatRequest struct {
	Message string    `json:"message"`
	History []ai.Turn `json:"history"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat sends one message with the conversation that preceded it and returns the relay's reply, which may be empty.
// Every failure is a *NetworkError
func (c *Client) Chat(ctx context.Context, message string, history []ai.Turn) (string, error) {
	if history == nil {
		history = []ai.Turn{}
	}
	body, err := json.Marshal(chatRequest{Message: message, History: history})
	if err != nil {
		return "", &NetworkError{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &NetworkError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.sessionID != "" {
		req.Header.Set("X-Session-ID", c.sessionID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return decoded.Reply, nil
}
