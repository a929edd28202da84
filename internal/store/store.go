// Package store provides the keyed persistence strategies for game-state
// records. All strategies expose the same two operations to the controller;
// selection is a deployment concern handled by the builder.
package store

import (
	"context"

	"github.com/karune/chessblock/internal/domain"
)

// Store reads and writes a game-state record keyed by a stable block
// identifier. Read returns (nil, nil) when no record exists; malformed
// stored data is reported and treated as absent rather than failing the
// load.
type Store interface {
	Read(ctx context.Context, id string) (*domain.GameStateRecord, error)
	Write(ctx context.Context, id string, rec *domain.GameStateRecord) error
}
