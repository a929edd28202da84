package rules

import "fmt"

// Replay builds an engine by applying a UCI move list on top of an initial
// diagram (empty means the standard start position). The resulting engine
// carries the full history, so its PGN serialization encodes the ledger.
func Replay(initialFEN string, uciMoves []string) (*Engine, error) {
	e := NewEngine()
	if initialFEN != "" {
		if err := e.LoadFEN(initialFEN); err != nil {
			return nil, err
		}
	}
	for _, uci := range uciMoves {
		if _, err := e.ApplyUCI(uci); err != nil {
			return nil, fmt.Errorf("replay move %s: %w", uci, err)
		}
	}
	return e, nil
}

// PGNFromMoves serializes a UCI move list as game notation without touching
// any live engine.
func PGNFromMoves(initialFEN string, uciMoves []string) (string, error) {
	e, err := Replay(initialFEN, uciMoves)
	if err != nil {
		return "", err
	}
	return e.PGN(), nil
}
