package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/karune/chessblock/internal/domain"
)

// ErrIllegalMove is returned when a move is rejected by the rules engine.
// Callers must not have mutated any state before seeing it.
var ErrIllegalMove = errors.New("illegal move")

// Engine adapts corentings/chess/v2 to the legality contract the controller
// depends on: position/game serialization, legal destination maps, move
// application and turn/check status.
type Engine struct {
	game *nchess.Game
}

// NewEngine returns an engine at the standard starting position.
func NewEngine() *Engine {
	return &Engine{game: nchess.NewGame()}
}

// LoadFEN replaces the engine position with the given board diagram.
func (e *Engine) LoadFEN(fen string) error {
	opt, err := nchess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return fmt.Errorf("load fen: %w", err)
	}
	e.game = nchess.NewGame(opt)
	return nil
}

// LoadPGN replaces the engine game with the given move-list notation,
// replaying it so Moves() reflects the full history.
func (e *Engine) LoadPGN(pgn string) error {
	opt, err := nchess.PGN(strings.NewReader(pgn))
	if err != nil {
		return fmt.Errorf("load pgn: %w", err)
	}
	e.game = nchess.NewGame(opt)
	return nil
}

// FEN returns the diagram serialization of the current position.
func (e *Engine) FEN() string { return e.game.FEN() }

// PGN returns the full-game serialization.
func (e *Engine) PGN() string { return strings.TrimSpace(e.game.String()) }

// Turn returns "white" or "black".
func (e *Engine) Turn() string {
	return strings.ToLower(e.game.Position().Turn().Name())
}

// InCheck reports whether the side to move is in check. Derived from the
// board itself so positions restored from a bare diagram, with no move
// history to carry a check tag, report it the same as live play.
func (e *Engine) InCheck() bool {
	pos := e.game.Position()
	return kingAttacked(pos.Board(), pos.Turn())
}

// GameOver reports whether the game has a decided outcome.
func (e *Engine) GameOver() bool {
	return e.game.Outcome() != nchess.NoOutcome
}

// LegalDestinations returns, for every origin square with at least one legal
// move, the sorted list of destination squares.
func (e *Engine) LegalDestinations() map[string][]string {
	dests := make(map[string][]string)
	for _, mv := range e.game.ValidMoves() {
		from := mv.S1().String()
		to := mv.S2().String()
		if !contains(dests[from], to) {
			dests[from] = append(dests[from], to)
		}
	}
	for _, list := range dests {
		sort.Strings(list)
	}
	return dests
}

// ApplyMove applies origin->destination with an optional promotion piece
// ("q", "r", "b", "n"). A bare from-to pair that requires a promotion is
// retried as a queen promotion. Fails with ErrIllegalMove leaving the
// position untouched.
func (e *Engine) ApplyMove(from, to, promotion string) (domain.Move, error) {
	uci := strings.ToLower(strings.TrimSpace(from) + strings.TrimSpace(to) + strings.TrimSpace(promotion))
	mv, err := e.applyUCI(uci)
	if err != nil && promotion == "" {
		mv, err = e.applyUCI(uci + "q")
	}
	return mv, err
}

// ApplyUCI applies a move given in UCI notation.
func (e *Engine) ApplyUCI(uci string) (domain.Move, error) {
	return e.applyUCI(strings.ToLower(strings.TrimSpace(uci)))
}

func (e *Engine) applyUCI(uci string) (domain.Move, error) {
	pos := e.game.Position()
	notation := nchess.UCINotation{}
	mv, err := notation.Decode(pos, uci)
	if err != nil {
		return domain.Move{}, ErrIllegalMove
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	if err := e.game.Move(mv, nil); err != nil {
		return domain.Move{}, ErrIllegalMove
	}
	return moveFromUCI(uci, san, e.game.FEN()), nil
}

// Moves returns the verbose replay history of the current game.
func (e *Engine) Moves() []domain.Move {
	moves := e.game.Moves()
	positions := e.game.Positions()
	san := nchess.AlgebraicNotation{}
	uci := nchess.UCINotation{}
	out := make([]domain.Move, 0, len(moves))
	for i, mv := range moves {
		if i+1 >= len(positions) {
			break
		}
		encoded := strings.ToLower(uci.Encode(positions[i], mv))
		out = append(out, moveFromUCI(encoded, san.Encode(positions[i], mv), positions[i+1].String()))
	}
	return out
}

func moveFromUCI(uci, san, fen string) domain.Move {
	m := domain.Move{UCI: uci, SAN: san, FEN: fen}
	if len(uci) >= 4 {
		m.From = uci[:2]
		m.To = uci[2:4]
		m.Promotion = uci[4:]
	}
	return m
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
