// Package blockdto carries the host-facing view of a board instance.
package blockdto

// BoardSnapshot is a point-in-time summary of one embedded board, suitable
// for host UIs and exports.
type BoardSnapshot struct {
	BlockID     string   `json:"block_id"`
	FEN         string   `json:"fen"`
	PGN         string   `json:"pgn,omitempty"`
	Turn        string   `json:"turn"`
	Check       bool     `json:"check"`
	Free        bool     `json:"free"`
	Orientation string   `json:"orientation"`
	MovesSAN    []string `json:"moves_san"`
	CursorIdx   int      `json:"cursor_idx"`
	BoardImage  []byte   `json:"board_image,omitempty"`
}
