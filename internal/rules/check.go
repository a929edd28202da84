package rules

import (
	nchess "github.com/corentings/chess/v2"
)

// kingAttacked reports whether side's king is attacked in the given board.
// The underlying library computes this itself but does not export it for a
// bare position, so positions restored from a diagram alone would otherwise
// lose their check status.
func kingAttacked(board *nchess.Board, side nchess.Color) bool {
	squares := board.SquareMap()

	kingSq := nchess.NoSquare
	for sq, piece := range squares {
		if piece.Type() == nchess.King && piece.Color() == side {
			kingSq = sq
			break
		}
	}
	if kingSq == nchess.NoSquare {
		return false
	}

	for sq, piece := range squares {
		if piece == nchess.NoPiece || piece.Color() == side {
			continue
		}
		if pieceAttacks(piece, sq, kingSq, squares) {
			return true
		}
	}
	return false
}

func pieceAttacks(piece nchess.Piece, from, to nchess.Square, occupied map[nchess.Square]nchess.Piece) bool {
	df := int(to.File()) - int(from.File())
	dr := int(to.Rank()) - int(from.Rank())
	adf, adr := abs(df), abs(dr)
	if adf == 0 && adr == 0 {
		return false
	}

	switch piece.Type() {
	case nchess.Pawn:
		dir := 1
		if piece.Color() == nchess.Black {
			dir = -1
		}
		return dr == dir && adf == 1
	case nchess.Knight:
		return (adf == 1 && adr == 2) || (adf == 2 && adr == 1)
	case nchess.King:
		return adf <= 1 && adr <= 1
	case nchess.Bishop:
		return adf == adr && rayClear(from, to, occupied)
	case nchess.Rook:
		return (df == 0 || dr == 0) && rayClear(from, to, occupied)
	case nchess.Queen:
		return (df == 0 || dr == 0 || adf == adr) && rayClear(from, to, occupied)
	}
	return false
}

// rayClear reports whether the squares strictly between from and to are
// empty. from and to must share a rank, file or diagonal.
func rayClear(from, to nchess.Square, occupied map[nchess.Square]nchess.Piece) bool {
	stepF := sign(int(to.File()) - int(from.File()))
	stepR := sign(int(to.Rank()) - int(from.Rank()))

	f := int(from.File()) + stepF
	r := int(from.Rank()) + stepR
	for f != int(to.File()) || r != int(to.Rank()) {
		sq := nchess.NewSquare(nchess.File(f), nchess.Rank(r))
		if p, ok := occupied[sq]; ok && p != nchess.NoPiece {
			return false
		}
		f += stepF
		r += stepR
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
