// Package store provides durable conversation session storage.
package store

import (
	"context"

	"github.com/ashureev/portfolio-assistant/internal/domain"
)

// Session is a handle over one conversation's append-only turn log.
type Session interface {
	// ID returns the session identifier the handle is bound to.
	ID() string

	// Append durably writes turns after every existing turn, in order.
	// All turns of one call are written atomically.
	Append(ctx context.Context, turns ...domain.Turn) error

	// History returns every stored turn, oldest first.
	History(ctx context.Context) ([]domain.Turn, error)
}

// Repository defines the interface for persisting conversation sessions.
type Repository interface {
	// GetOrCreate returns a handle for sessionID, creating an empty record
	// when none exists. Absence is never an error.
	GetOrCreate(ctx context.Context, sessionID string) (Session, error)

	// Ping verifies backend connectivity.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}
