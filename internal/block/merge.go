package block

import (
	"github.com/karune/chessblock/internal/domain"
)

// EffectiveConfig is the result of merging the declared block with any
// previously persisted record: the state the board actually loads from.
type EffectiveConfig struct {
	ID          string
	GeneratedID bool

	FEN      string
	PGN      string
	MovesUCI []string

	Orientation domain.Orientation
	Free        bool
	ViewOnly    bool
	Drawable    bool
	BoardStyle  string
	PieceStyle  string
	Shapes      []domain.Shape

	CursorIdx      *int
	RememberCursor bool
}

// Merge resolves declared config against a persisted record (which may be
// nil). Persisted fields overwrite declared fields field-by-field when
// defined; the declared identifier is authoritative; fields absent from
// both fall back to system defaults. When the declared block carries no
// identifier a fresh one is generated and GeneratedID is set, signalling
// the one-time write-back.
func Merge(declared *BlockConfig, persisted *domain.GameStateRecord) EffectiveConfig {
	if declared == nil {
		declared = &BlockConfig{}
	}

	eff := EffectiveConfig{
		ID:             declared.ID,
		FEN:            declared.FEN,
		PGN:            declared.PGN,
		Orientation:    domain.OrientationWhite,
		Drawable:       true,
		BoardStyle:     domain.DefaultBoardStyle,
		PieceStyle:     domain.DefaultPieceStyle,
		Shapes:         append([]domain.Shape(nil), declared.Shapes...),
		CursorIdx:      declared.CurrentMoveIdx,
		RememberCursor: declared.RememberCursor,
	}

	if eff.ID == "" {
		eff.ID = GenerateID()
		eff.GeneratedID = true
	}
	if declared.Orientation != "" {
		eff.Orientation = declared.Orientation
	}
	if declared.Free != nil {
		eff.Free = *declared.Free
	}
	if declared.ViewOnly != nil {
		eff.ViewOnly = *declared.ViewOnly
	}
	if declared.Drawable != nil {
		eff.Drawable = *declared.Drawable
	}
	if declared.BoardStyle != "" {
		eff.BoardStyle = declared.BoardStyle
	}
	if declared.PieceStyle != "" {
		eff.PieceStyle = declared.PieceStyle
	}

	if persisted == nil {
		return eff
	}

	if len(persisted.MovesUCI) > 0 {
		eff.MovesUCI = append([]string(nil), persisted.MovesUCI...)
	}
	if persisted.PGN != "" {
		eff.PGN = persisted.PGN
	}
	if persisted.FEN != "" {
		eff.FEN = persisted.FEN
	}
	if persisted.Orientation != "" {
		eff.Orientation = persisted.Orientation
	}
	eff.Free = persisted.Free
	if persisted.BoardStyle != "" {
		eff.BoardStyle = persisted.BoardStyle
	}
	if persisted.PieceStyle != "" {
		eff.PieceStyle = persisted.PieceStyle
	}
	if persisted.Shapes != nil {
		eff.Shapes = append([]domain.Shape(nil), persisted.Shapes...)
	}
	if eff.RememberCursor && persisted.CursorIdx != nil {
		idx := *persisted.CursorIdx
		eff.CursorIdx = &idx
	}

	return eff
}
