package api

import (
	"context"

	"kanban/domain"
)

const postCommandMaxSize = 64 * 1024 // 64 KiB

// Deduper prevents a command from being applied twice.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, sessionID, key string) (bool, error)
	// Remove deletes a previously added key, used when the command fails.
	Remove(ctx context.Context, sessionID, key string) error
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type boardResponse struct {
	Columns []domain.Column `json:"columns"`
}

type addTaskRequest struct {
	ColumnID    string          `json:"columnId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Priority    domain.Priority `json:"priority,omitempty"`
}

// /POST /api/commands response body
type postCommandResponse struct {
	IdempotencyKeys []string        `json:"idempotencyKeys,omitempty"`
	Results         []commandResult `json:"results,omitempty"`
	Error           string          `json:"error,omitempty"`
}
