package rules

import (
	"errors"
	"strings"
	"testing"
)

const startFENPrefix = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w"

func TestNewEngineStartPosition(t *testing.T) {
	e := NewEngine()
	if !strings.HasPrefix(e.FEN(), startFENPrefix) {
		t.Fatalf("unexpected start FEN: %s", e.FEN())
	}
	if e.Turn() != "white" {
		t.Fatalf("expected white to move, got %s", e.Turn())
	}
	if e.InCheck() || e.GameOver() {
		t.Fatalf("fresh game reports check=%v over=%v", e.InCheck(), e.GameOver())
	}
}

func TestApplyMoveE2E4(t *testing.T) {
	e := NewEngine()
	mv, err := e.ApplyMove("e2", "e4", "")
	if err != nil {
		t.Fatalf("ApplyMove e2e4: %v", err)
	}
	if mv.UCI != "e2e4" || mv.From != "e2" || mv.To != "e4" {
		t.Fatalf("unexpected move fields: %+v", mv)
	}
	if mv.SAN != "e4" {
		t.Fatalf("expected SAN e4, got %q", mv.SAN)
	}
	// The stored diagram is the position after the move.
	if mv.FEN != e.FEN() {
		t.Fatalf("move FEN %q != engine FEN %q", mv.FEN, e.FEN())
	}
	if !strings.HasPrefix(e.FEN(), "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq") {
		t.Fatalf("unexpected FEN after e4: %s", e.FEN())
	}
	if e.Turn() != "black" {
		t.Fatalf("expected black to move, got %s", e.Turn())
	}
	if e.InCheck() {
		t.Fatalf("e4 does not give check")
	}
}

func TestIllegalMoveLeavesPositionUntouched(t *testing.T) {
	e := NewEngine()
	before := e.FEN()
	if _, err := e.ApplyMove("e2", "e5", ""); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if e.FEN() != before {
		t.Fatalf("position changed after rejected move: %s", e.FEN())
	}
	if e.Turn() != "white" {
		t.Fatalf("turn changed after rejected move")
	}
}

func TestLegalDestinationsStartPosition(t *testing.T) {
	e := NewEngine()
	dests := e.LegalDestinations()
	if len(dests) != 10 {
		// 8 pawns + 2 knights have moves from the start.
		t.Fatalf("expected 10 origin squares, got %d: %v", len(dests), dests)
	}
	e2 := dests["e2"]
	if len(e2) != 2 || e2[0] != "e3" || e2[1] != "e4" {
		t.Fatalf("unexpected e2 destinations: %v", e2)
	}
	g1 := dests["g1"]
	if len(g1) != 2 || g1[0] != "f3" || g1[1] != "h3" {
		t.Fatalf("unexpected g1 destinations: %v", g1)
	}
}

func TestAutoQueenPromotion(t *testing.T) {
	e := NewEngine()
	if err := e.LoadFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1"); err != nil {
		t.Fatalf("LoadFEN: %v", err)
	}
	mv, err := e.ApplyMove("a7", "a8", "")
	if err != nil {
		t.Fatalf("bare promotion move rejected: %v", err)
	}
	if mv.UCI != "a7a8q" || mv.Promotion != "q" {
		t.Fatalf("expected queen promotion, got %+v", mv)
	}
	if !e.InCheck() {
		t.Fatalf("a8=Q+ should give check")
	}
}

func TestExplicitUnderpromotion(t *testing.T) {
	e := NewEngine()
	if err := e.LoadFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1"); err != nil {
		t.Fatalf("LoadFEN: %v", err)
	}
	mv, err := e.ApplyMove("a7", "a8", "n")
	if err != nil {
		t.Fatalf("underpromotion rejected: %v", err)
	}
	if mv.UCI != "a7a8n" {
		t.Fatalf("unexpected UCI: %s", mv.UCI)
	}
}

func TestCheckmateDetection(t *testing.T) {
	e := NewEngine()
	// Fool's mate.
	for _, uci := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if _, err := e.ApplyUCI(uci); err != nil {
			t.Fatalf("ApplyUCI %s: %v", uci, err)
		}
	}
	if !e.InCheck() {
		t.Fatalf("checkmated side should be in check")
	}
	if !e.GameOver() {
		t.Fatalf("game should be over after mate")
	}
	if dests := e.LegalDestinations(); len(dests) != 0 {
		t.Fatalf("no legal moves expected after mate, got %v", dests)
	}
}

func TestInCheckFromBareDiagram(t *testing.T) {
	cases := []struct {
		name  string
		fen   string
		check bool
	}{
		// 1.e4 f5 2.Qh5+ with the history stripped away.
		{"queen check", "rnbqkbnr/ppppp1pp/8/5p1Q/4P3/8/PPPP1PPP/RNB1KBNR b KQkq - 1 2", true},
		{"knight check", "4k3/8/3N4/8/8/8/8/4K3 b - - 0 1", true},
		{"pawn check", "8/8/8/3k4/4P3/8/8/4K3 b - - 0 1", true},
		{"rook check blocked", "4k3/4n3/8/8/8/8/8/4RK2 b - - 0 1", false},
		{"rook check open", "4k3/8/8/8/8/8/8/4RK2 b - - 0 1", true},
		{"quiet position", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine()
			if err := e.LoadFEN(tc.fen); err != nil {
				t.Fatalf("LoadFEN: %v", err)
			}
			if got := e.InCheck(); got != tc.check {
				t.Fatalf("InCheck=%v, want %v for %s", got, tc.check, tc.fen)
			}
		})
	}
}

func TestInCheckClearsAfterEscape(t *testing.T) {
	e := NewEngine()
	for _, uci := range []string{"e2e4", "f7f5", "d1h5"} {
		if _, err := e.ApplyUCI(uci); err != nil {
			t.Fatalf("ApplyUCI %s: %v", uci, err)
		}
	}
	if !e.InCheck() {
		t.Fatalf("black should be in check after Qh5+")
	}
	if _, err := e.ApplyUCI("g7g6"); err != nil {
		t.Fatalf("ApplyUCI g7g6: %v", err)
	}
	if e.InCheck() {
		t.Fatalf("check should clear after the block")
	}
}

func TestMovesMirrorsHistory(t *testing.T) {
	e := NewEngine()
	played := []string{"e2e4", "e7e5", "g1f3"}
	for _, uci := range played {
		if _, err := e.ApplyUCI(uci); err != nil {
			t.Fatalf("ApplyUCI %s: %v", uci, err)
		}
	}
	moves := e.Moves()
	if len(moves) != len(played) {
		t.Fatalf("expected %d moves, got %d", len(played), len(moves))
	}
	for i, mv := range moves {
		if mv.UCI != played[i] {
			t.Fatalf("move %d: expected %s, got %s", i, played[i], mv.UCI)
		}
		if mv.FEN == "" || mv.SAN == "" {
			t.Fatalf("move %d missing notation: %+v", i, mv)
		}
	}
	if moves[len(moves)-1].FEN != e.FEN() {
		t.Fatalf("last move FEN should match current position")
	}
}

func TestReplayRoundTrip(t *testing.T) {
	history := []string{"e2e4", "c7c5", "g1f3", "d7d6"}
	e, err := Replay("", history)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if e.Turn() != "white" {
		t.Fatalf("expected white after 4 plies, got %s", e.Turn())
	}
	moves := e.Moves()
	if len(moves) != len(history) {
		t.Fatalf("replayed history length %d", len(moves))
	}

	pgn, err := PGNFromMoves("", history)
	if err != nil {
		t.Fatalf("PGNFromMoves: %v", err)
	}
	if !strings.Contains(pgn, "c5") || !strings.Contains(pgn, "Nf3") {
		t.Fatalf("unexpected PGN: %q", pgn)
	}
}

func TestReplayRejectsCorruptHistory(t *testing.T) {
	if _, err := Replay("", []string{"e2e4", "e2e4"}); err == nil {
		t.Fatalf("expected replay failure on impossible move list")
	}
}

func TestLoadPGNRestoresHistory(t *testing.T) {
	e := NewEngine()
	if err := e.LoadPGN("1. e4 e5 2. Nf3"); err != nil {
		t.Fatalf("LoadPGN: %v", err)
	}
	if got := len(e.Moves()); got != 3 {
		t.Fatalf("expected 3 plies from PGN, got %d", got)
	}
	if e.Turn() != "black" {
		t.Fatalf("expected black to move, got %s", e.Turn())
	}
}
