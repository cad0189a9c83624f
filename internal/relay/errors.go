package relay

import "net/http"

// Kind classifies why an exchange failed
type Kind int

const (
	// KindBadRequest means the caller sent no usable message
	KindBadRequest Kind = iota + 1
	// KindUpstreamEmpty means the provider answered but produced no usable text
	KindUpstreamEmpty
	// KindUpstreamError means the provider call itself failed
	KindUpstreamError
)

// Messages shown to callers. They never include provider detail
const (
	MessageRequired       = "A user message is required."
	NoResponseGenerated   = "No response generated."
	FailedToGenerateReply = "Failed to generate a reply."
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "BadRequest"
	case KindUpstreamEmpty:
		return "UpstreamEmpty"
	case KindUpstreamError:
		return "UpstreamError"
	default:
		return "Unknown"
	}
}

// Error is a failed exchange. Status and ClientMsg are safe to send to the caller; Err holds the internal cause and
// must only be logged
type Error struct {
	Kind      Kind
	Status    int
	ClientMsg string
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Kind.String() + ": " + e.ClientMsg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.ClientMsg
}

func (e *Error) Unwrap() error { return e.Err }

func badRequest() *Error {
	return &Error{Kind: KindBadRequest, Status: http.StatusBadRequest, ClientMsg: MessageRequired}
}

func upstreamEmpty() *Error {
	return &Error{Kind: KindUpstreamEmpty, Status: http.StatusInternalServerError, ClientMsg: NoResponseGenerated}
}

func upstreamError(err error) *Error {
	return &Error{Kind: KindUpstreamError, Status: http.StatusInternalServerError, ClientMsg: FailedToGenerateReply, Err: err}
}
