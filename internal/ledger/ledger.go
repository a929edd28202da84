// Package ledger holds the ordered move history of a board instance,
// independent of the rules engine's own linear history. A movable cursor
// identifies the currently displayed position; rewinding the cursor never
// discards moves, so redo stays possible.
package ledger

import (
	"errors"

	"github.com/karune/chessblock/internal/domain"
)

// Start is the cursor sentinel for the initial position, before any move.
const Start = -1

// ErrCursorBehind is returned by Append while the cursor is behind the end
// of the ledger. New moves are only accepted in live (non-replay) mode.
var ErrCursorBehind = errors.New("ledger cursor behind end")

type Ledger struct {
	moves  []domain.Move
	cursor int
}

func New() *Ledger {
	return &Ledger{cursor: Start}
}

// FromMoves builds a ledger from an existing history with the cursor at the
// end.
func FromMoves(moves []domain.Move) *Ledger {
	l := &Ledger{moves: append([]domain.Move(nil), moves...)}
	l.cursor = len(l.moves) - 1
	return l
}

// Append records a move and advances the cursor onto it. Only valid when
// the cursor is at the end.
func (l *Ledger) Append(mv domain.Move) error {
	if !l.AtEnd() {
		return ErrCursorBehind
	}
	l.moves = append(l.moves, mv)
	l.cursor = len(l.moves) - 1
	return nil
}

// At returns the move at index. Index must be in [0, Len()).
func (l *Ledger) At(index int) domain.Move {
	return l.moves[index]
}

func (l *Ledger) Len() int { return len(l.moves) }

// Cursor returns the index of the currently displayed move, or Start.
func (l *Ledger) Cursor() int { return l.cursor }

// SetCursor moves the cursor, clamping to [Start, Len()-1].
func (l *Ledger) SetCursor(idx int) {
	if idx < Start {
		idx = Start
	}
	if idx > len(l.moves)-1 {
		idx = len(l.moves) - 1
	}
	l.cursor = idx
}

// AtStart reports whether no prior move is displayed.
func (l *Ledger) AtStart() bool { return l.cursor == Start }

// AtEnd reports whether the cursor sits on the latest move (always true for
// an empty ledger).
func (l *Ledger) AtEnd() bool { return l.cursor == len(l.moves)-1 }

// Moves returns a copy of the full history, cursor position regardless.
func (l *Ledger) Moves() []domain.Move {
	return append([]domain.Move(nil), l.moves...)
}

// UCIMoves returns the UCI list of the full history, the shape persisted in
// game-state records.
func (l *Ledger) UCIMoves() []string {
	out := make([]string, len(l.moves))
	for i, mv := range l.moves {
		out[i] = mv.UCI
	}
	return out
}
