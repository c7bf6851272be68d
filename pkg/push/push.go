// Package push defines the delivery capability the fan-out engine
// batches device notifications through and its FCM-backed
// implementation.
package push

import "context"

// Notification is the visible part of a push payload.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// TokenResult is the transport's outcome for one device token.
type TokenResult struct {
	Token     string
	MessageID string
	Error     string
}

// BatchResult aggregates one batched send. Partial failure is normal:
// stale tokens fail individually while the rest deliver.
type BatchResult struct {
	Success int
	Failure int
	Results []TokenResult
}

// Sender sends one notification to a batch of device tokens in a
// single call. A returned error means the batch as a whole could not be
// attempted; per-token failures live in BatchResult.
type Sender interface {
	Send(ctx context.Context, tokens []string, note Notification, data map[string]string) (*BatchResult, error)
}
