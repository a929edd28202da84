package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/karune/chessblock/internal/block"
	"github.com/karune/chessblock/internal/domain"
)

// BlockStore is the declarative-source round-trip strategy: the block text
// itself is the persisted record. Reads parse the block's current text;
// writes merge the record back into it, preserving unrelated keys. A parse
// failure of the current text degrades the write to a no-op.
type BlockStore struct {
	doc    HostDocument
	logger *zap.Logger
}

func NewBlockStore(doc HostDocument, logger *zap.Logger) *BlockStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlockStore{doc: doc, logger: logger}
}

func (s *BlockStore) Read(_ context.Context, id string) (*domain.GameStateRecord, error) {
	text, err := s.doc.ReadBlock()
	if err != nil {
		return nil, fmt.Errorf("locate block: %w", err)
	}
	cfg, err := block.Parse(text)
	if err != nil {
		s.logger.Warn("unparseable block text, treating state as absent", zap.Error(err))
		return nil, nil
	}
	if cfg.ID == "" || cfg.ID != id {
		return nil, nil
	}

	rec := &domain.GameStateRecord{
		BlockID:     cfg.ID,
		FEN:         cfg.FEN,
		PGN:         cfg.PGN,
		Orientation: cfg.Orientation,
		Shapes:      append([]domain.Shape(nil), cfg.Shapes...),
	}
	if cfg.Free != nil {
		rec.Free = *cfg.Free
	}
	if cfg.RememberCursor && cfg.CurrentMoveIdx != nil {
		idx := *cfg.CurrentMoveIdx
		rec.CursorIdx = &idx
	}
	return rec, nil
}

func (s *BlockStore) Write(_ context.Context, id string, rec *domain.GameStateRecord) error {
	if rec == nil {
		return fmt.Errorf("nil game state record")
	}
	text, err := s.doc.ReadBlock()
	if err != nil {
		return fmt.Errorf("locate block: %w", err)
	}
	cfg, err := block.Parse(text)
	if err != nil {
		s.logger.Warn("unparseable block text, skipping write-back", zap.Error(err))
		return nil
	}

	clone := rec.Clone()
	clone.BlockID = id
	clone.UpdatedAt = time.Now()
	cfg.ApplyRecord(clone)

	rendered, err := cfg.Render()
	if err != nil {
		return fmt.Errorf("render block: %w", err)
	}
	if err := s.doc.WriteBlock(rendered); err != nil {
		return fmt.Errorf("rewrite block: %w", err)
	}
	return nil
}
