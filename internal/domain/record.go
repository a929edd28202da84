package domain

import "time"

// Orientation is the side of the board facing the viewer.
type Orientation string

const (
	OrientationWhite Orientation = "white"
	OrientationBlack Orientation = "black"
)

// Flip returns the opposite orientation.
func (o Orientation) Flip() Orientation {
	if o == OrientationBlack {
		return OrientationWhite
	}
	return OrientationBlack
}

func (o Orientation) Valid() bool {
	return o == OrientationWhite || o == OrientationBlack
}

// Default configuration values applied when a field is absent from both the
// declared block and the persisted record.
const (
	DefaultBoardStyle = "brown"
	DefaultPieceStyle = "classic"
)

// Move is a single accepted move as stored by the ledger. FEN holds the
// position after the move, which anchors replay-from-ledger rewinds.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	SAN       string `json:"san"`
	UCI       string `json:"uci"`
	FEN       string `json:"fen"`
}

// Shape is a drawn annotation on the board: a circle when Dest is empty,
// an arrow otherwise.
type Shape struct {
	Orig  string `json:"orig" yaml:"orig"`
	Dest  string `json:"dest,omitempty" yaml:"dest,omitempty"`
	Brush string `json:"brush,omitempty" yaml:"brush,omitempty"`
}

// GameStateRecord is the persisted snapshot of one board instance, keyed by
// BlockID. CursorIdx is only set when the block opts into cursor persistence.
type GameStateRecord struct {
	BlockID     string      `json:"block_id"`
	RecordUUID  string      `json:"record_uuid,omitempty"`
	MovesUCI    []string    `json:"moves_uci"`
	FEN         string      `json:"fen,omitempty"`
	PGN         string      `json:"pgn,omitempty"`
	Free        bool        `json:"free"`
	Orientation Orientation `json:"orientation,omitempty"`
	BoardStyle  string      `json:"board_style,omitempty"`
	PieceStyle  string      `json:"piece_style,omitempty"`
	Shapes      []Shape     `json:"shapes,omitempty"`
	CursorIdx   *int        `json:"cursor_idx,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate records without aliasing
// store-held state.
func (r *GameStateRecord) Clone() *GameStateRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.MovesUCI = append([]string(nil), r.MovesUCI...)
	out.Shapes = append([]Shape(nil), r.Shapes...)
	if r.CursorIdx != nil {
		idx := *r.CursorIdx
		out.CursorIdx = &idx
	}
	return &out
}
