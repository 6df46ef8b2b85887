// ABOUTME: Successful gateway outcomes and the shared acknowledgement envelope
// ABOUTME: A Result with no body stands for a bare "success" answer (204 or empty 2xx)

package gateway

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrReported is returned by services built on the gateway when a call
// failed and the user has already been shown a notice. Callers render an
// empty state and do nothing else.
var ErrReported = errors.New("request failed (already reported)")

// ErrRejected is returned when the server answered a mutation with
// {"success": false}. The gateway does not report it; the caller does.
var ErrRejected = errors.New("rejected by server")

// ErrEmptyBody is returned by Result.Decode when there is nothing to decode.
var ErrEmptyBody = errors.New("response has no body")

// Caller is the part of the Gateway that feature services depend on.
type Caller interface {
	Call(ctx context.Context, endpoint, method string, body any) *Result
	Fetch(ctx context.Context, endpoint, method string, body, out any) bool
}

// Result is a successful response.
type Result struct {
	Status int
	// Body is the raw JSON payload; nil for 204 and empty 2xx responses.
	Body json.RawMessage
}

// Empty reports whether the server answered without a body.
func (r *Result) Empty() bool {
	return r == nil || len(r.Body) == 0
}

// Decode unmarshals the body into v.
func (r *Result) Decode(v any) error {
	if r.Empty() {
		return ErrEmptyBody
	}
	return json.Unmarshal(r.Body, v)
}

// Ack is the {"success": ..., "message": ...} envelope most mutating
// endpoints answer with.
type Ack struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the server acknowledged the mutation. A missing
// success field (including an empty response) counts as acknowledged.
func (a Ack) OK() bool {
	return a.Success == nil || *a.Success
}

// Acknowledger is a response carrying the success envelope, usually a struct
// embedding Ack.
type Acknowledger interface {
	OK() bool
}

// Mutate issues a mutating call and decodes the answer into out; a nil out
// decodes into a bare Ack. It returns ErrReported when the call failed and a
// notice was shown, and ErrRejected when the server answered
// {"success": false}.
func Mutate(ctx context.Context, api Caller, endpoint, method string, body any, out Acknowledger) error {
	if out == nil {
		out = &Ack{}
	}
	if !api.Fetch(ctx, endpoint, method, body, out) {
		return ErrReported
	}
	if !out.OK() {
		return ErrRejected
	}
	return nil
}
