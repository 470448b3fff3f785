// Package chat orchestrates a single exchange: load history, retrieve
// context, call the completion service, persist the updated transcript.
package chat

import "errors"

// ErrEmptyMessage indicates a chat request without message text.
// Maps to HTTP 400.
var ErrEmptyMessage = errors.New("message is required")

// UpstreamError wraps any downstream dependency failure during a chat
// exchange. Maps to HTTP 500 with the underlying message echoed.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
