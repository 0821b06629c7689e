// Package storage persists game sessions so an interrupted game can be
// resumed. Redis backs it when configured; otherwise sessions live in
// process memory for the run.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/parley-engine/pkg/state"
)

// Storage defines session persistence. A missing session is not an
// error; LoadGameState returns nil, nil so callers can branch cleanly.
type Storage interface {
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
	Close() error
}
