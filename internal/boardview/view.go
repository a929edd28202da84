// Package boardview is the rendering-engine side of the board: a declarative
// visual state pushed by the synchronization controller, user-interaction
// callbacks flowing back, and a PNG snapshot renderer.
package boardview

import (
	"sync"

	"github.com/karune/chessblock/internal/domain"
)

// VisualState is the full declarative state of the board surface.
type VisualState struct {
	FEN         string
	Orientation domain.Orientation
	Turn        string
	Check       bool
	Dests       map[string][]string
	Free        bool
	ViewOnly    bool
	Drawable    bool
	Shapes      []domain.Shape
	LastMove    []string // [from, to] of the most recent move, empty if none
	BoardStyle  string
	PieceStyle  string
}

// StateUpdate is a partial visual-state change. Nil pointer fields leave the
// current value untouched; Dests and Shapes follow the same convention with
// nil, so an empty non-nil map or ClearShapes clears explicitly.
type StateUpdate struct {
	FEN         *string
	Orientation *domain.Orientation
	Turn        *string
	Check       *bool
	Free        *bool
	ViewOnly    *bool
	Dests       map[string][]string
	ClearDests  bool
	Shapes      []domain.Shape
	ClearShapes bool
	LastMove    []string
}

// View is the rendering-engine contract the controller drives. Implementors
// deliver one interaction event at a time.
type View interface {
	SetState(StateUpdate)
	State() VisualState
	HandleMove(func(from, to string))
	HandleShapes(func(shapes []domain.Shape))
	ToggleOrientation()
}

// EmbeddedBoard is a headless View. Hosts (and tests) feed user input through
// Drag and DrawShapes; the controller reacts through the registered handlers
// and pushes the reconciled state back with SetState.
type EmbeddedBoard struct {
	mu       sync.Mutex
	state    VisualState
	onMove   func(from, to string)
	onShapes func([]domain.Shape)
}

// NewEmbeddedBoard creates a board with the given initial visual state.
func NewEmbeddedBoard(initial VisualState) *EmbeddedBoard {
	if initial.Orientation == "" {
		initial.Orientation = domain.OrientationWhite
	}
	if initial.BoardStyle == "" {
		initial.BoardStyle = domain.DefaultBoardStyle
	}
	if initial.PieceStyle == "" {
		initial.PieceStyle = domain.DefaultPieceStyle
	}
	return &EmbeddedBoard{state: initial}
}

func (b *EmbeddedBoard) SetState(u StateUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u.FEN != nil {
		b.state.FEN = *u.FEN
	}
	if u.Orientation != nil {
		b.state.Orientation = *u.Orientation
	}
	if u.Turn != nil {
		b.state.Turn = *u.Turn
	}
	if u.Check != nil {
		b.state.Check = *u.Check
	}
	if u.Free != nil {
		b.state.Free = *u.Free
	}
	if u.ViewOnly != nil {
		b.state.ViewOnly = *u.ViewOnly
	}
	if u.ClearDests {
		b.state.Dests = nil
	} else if u.Dests != nil {
		b.state.Dests = u.Dests
	}
	if u.ClearShapes {
		b.state.Shapes = nil
	} else if u.Shapes != nil {
		b.state.Shapes = append([]domain.Shape(nil), u.Shapes...)
	}
	if u.LastMove != nil {
		b.state.LastMove = append([]string(nil), u.LastMove...)
	}
}

func (b *EmbeddedBoard) State() VisualState {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.state
	st.Shapes = append([]domain.Shape(nil), b.state.Shapes...)
	st.LastMove = append([]string(nil), b.state.LastMove...)
	st.Dests = copyDests(b.state.Dests)
	return st
}

func (b *EmbeddedBoard) HandleMove(fn func(from, to string)) {
	b.mu.Lock()
	b.onMove = fn
	b.mu.Unlock()
}

func (b *EmbeddedBoard) HandleShapes(fn func([]domain.Shape)) {
	b.mu.Lock()
	b.onShapes = fn
	b.mu.Unlock()
}

func (b *EmbeddedBoard) ToggleOrientation() {
	b.mu.Lock()
	b.state.Orientation = b.state.Orientation.Flip()
	b.mu.Unlock()
}

// Drag injects a user piece drag. In constrained mode a destination outside
// the current destination map reverts: the drag is dropped without reaching
// the move handler and the board keeps its pushed state. Returns whether the
// drag was accepted.
func (b *EmbeddedBoard) Drag(from, to string) bool {
	b.mu.Lock()
	if b.state.ViewOnly {
		b.mu.Unlock()
		return false
	}
	if !b.state.Free && !destAllowed(b.state.Dests, from, to) {
		b.mu.Unlock()
		return false
	}
	handler := b.onMove
	b.mu.Unlock()

	if handler != nil {
		handler(from, to)
	}
	return true
}

// DrawShapes injects an annotation change from the user. Boards that are
// view-only or have drawing disabled drop it. Returns whether it was
// accepted.
func (b *EmbeddedBoard) DrawShapes(shapes []domain.Shape) bool {
	b.mu.Lock()
	if b.state.ViewOnly || !b.state.Drawable {
		b.mu.Unlock()
		return false
	}
	b.state.Shapes = append([]domain.Shape(nil), shapes...)
	handler := b.onShapes
	b.mu.Unlock()

	if handler != nil {
		handler(shapes)
	}
	return true
}

func destAllowed(dests map[string][]string, from, to string) bool {
	for _, d := range dests[from] {
		if d == to {
			return true
		}
	}
	return false
}

func copyDests(src map[string][]string) map[string][]string {
	if src == nil {
		return nil
	}
	out := make(map[string][]string, len(src))
	for k, v := range src {
		out[k] = append([]string(nil), v...)
	}
	return out
}
