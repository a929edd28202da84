package boardview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"

	nchess "github.com/corentings/chess/v2"

	"github.com/karune/chessblock/internal/domain"
)

const (
	squareSize = 72
	boardSize  = squareSize * 8
)

type palette struct {
	light color.RGBA
	dark  color.RGBA
}

var boardPalettes = map[string]palette{
	"brown": {light: color.RGBA{233, 207, 163, 255}, dark: color.RGBA{187, 136, 96, 255}},
	"blue":  {light: color.RGBA{222, 227, 230, 255}, dark: color.RGBA{140, 162, 173, 255}},
	"green": {light: color.RGBA{235, 236, 208, 255}, dark: color.RGBA{119, 149, 86, 255}},
}

var (
	lastMoveFill = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	checkFill    = color.NRGBA{R: 235, G: 97, B: 80, A: 170}
	brushColors  = map[string]color.NRGBA{
		"green":  {R: 21, G: 120, B: 27, A: 170},
		"red":    {R: 136, G: 32, B: 32, A: 170},
		"blue":   {R: 0, G: 48, B: 136, A: 170},
		"yellow": {R: 231, G: 170, B: 22, A: 170},
	}
)

// Snapshot renders the board's current visual state to PNG.
func (b *EmbeddedBoard) Snapshot(ctx context.Context) ([]byte, error) {
	return Render(ctx, b.State())
}

// Render draws a VisualState: squares per board style, pieces from the FEN,
// last-move and check overlays, then annotation shapes on top.
func Render(ctx context.Context, state VisualState) ([]byte, error) {
	board, err := boardFromFEN(state.FEN)
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	pal, ok := boardPalettes[state.BoardStyle]
	if !ok {
		pal = boardPalettes[domain.DefaultBoardStyle]
	}
	flipped := state.Orientation == domain.OrientationBlack

	img := image.NewRGBA(image.Rect(0, 0, boardSize, boardSize))
	drawSquares(img, pal, flipped)

	if len(state.LastMove) == 2 {
		drawSquareOverlay(img, state.LastMove[0], flipped, lastMoveFill)
		drawSquareOverlay(img, state.LastMove[1], flipped, lastMoveFill)
	}
	if state.Check {
		if sq, ok := kingSquare(board, state.Turn); ok {
			drawSquareOverlay(img, sq, flipped, checkFill)
		}
	}
	if err := drawPieces(img, board, flipped); err != nil {
		return nil, err
	}
	for _, shape := range state.Shapes {
		drawShape(img, shape, flipped)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func boardFromFEN(fen string) (*nchess.Board, error) {
	if fen == "" {
		return nchess.NewGame().Position().Board(), nil
	}
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("snapshot fen: %w", err)
	}
	return nchess.NewGame(opt).Position().Board(), nil
}

func drawSquares(img *image.RGBA, pal palette, flipped bool) {
	for file := nchess.FileA; file <= nchess.FileH; file++ {
		for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
			sq := nchess.NewSquare(file, rank)
			clr := pal.light
			if (int(file)+int(rank))%2 == 0 {
				clr = pal.dark
			}
			imagedraw.Draw(img, squareRect(sq, flipped), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(img *image.RGBA, board *nchess.Board, flipped bool) error {
	for sq, piece := range board.SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		pieceImg, err := rasterizePiece(piece, squareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(img, squareRect(sq, flipped), pieceImg, image.Point{}, imagedraw.Over)
	}
	return nil
}

func kingSquare(board *nchess.Board, turn string) (string, bool) {
	want := nchess.Black
	if turn == "white" {
		want = nchess.White
	}
	for sq, piece := range board.SquareMap() {
		if piece.Type() == nchess.King && piece.Color() == want {
			return sq.String(), true
		}
	}
	return "", false
}

func drawShape(img *image.RGBA, shape domain.Shape, flipped bool) {
	clr, ok := brushColors[shape.Brush]
	if !ok {
		clr = brushColors["green"]
	}
	if shape.Dest == "" || shape.Dest == shape.Orig {
		rect, ok := squareRectByName(shape.Orig, flipped)
		if !ok {
			return
		}
		center := image.Pt(rect.Min.X+squareSize/2, rect.Min.Y+squareSize/2)
		drawRing(img, center, squareSize/2-4, squareSize/12, clr)
		return
	}
	drawArrow(img, shape.Orig, shape.Dest, flipped, clr)
}

func drawSquareOverlay(img *image.RGBA, name string, flipped bool, clr color.Color) {
	rect, ok := squareRectByName(name, flipped)
	if !ok {
		return
	}
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawArrow(img *image.RGBA, fromName, toName string, flipped bool, clr color.Color) {
	fromRect, okFrom := squareRectByName(fromName, flipped)
	toRect, okTo := squareRectByName(toName, flipped)
	if !okFrom || !okTo || fromName == toName {
		return
	}
	start := image.Pt(fromRect.Min.X+squareSize/2, fromRect.Min.Y+squareSize/2)
	end := image.Pt(toRect.Min.X+squareSize/2, toRect.Min.Y+squareSize/2)

	dx := float64(end.X - start.X)
	dy := float64(end.Y - start.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	shaftLength := length - float64(squareSize)*0.45
	if shaftLength < float64(squareSize)*0.35 {
		shaftLength = length * 0.6
	}
	halfWidth := float64(squareSize) * 0.14
	headWidth := float64(squareSize) * 0.3

	baseX := float64(start.X) + dirX*shaftLength
	baseY := float64(start.Y) + dirY*shaftLength

	fillQuad(img,
		pointF{float64(start.X) - perpX*halfWidth, float64(start.Y) - perpY*halfWidth},
		pointF{float64(start.X) + perpX*halfWidth, float64(start.Y) + perpY*halfWidth},
		pointF{baseX + perpX*halfWidth, baseY + perpY*halfWidth},
		pointF{baseX - perpX*halfWidth, baseY - perpY*halfWidth},
		clr,
	)
	fillTriangleF(img,
		pointF{float64(end.X), float64(end.Y)},
		pointF{baseX - perpX*headWidth/2, baseY - perpY*headWidth/2},
		pointF{baseX + perpX*headWidth/2, baseY + perpY*headWidth/2},
		clr,
	)
}

func drawRing(img *image.RGBA, center image.Point, radius, thickness int, clr color.Color) {
	if radius <= 0 {
		return
	}
	outer := radius * radius
	innerRadius := radius - thickness
	inner := innerRadius * innerRadius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			d := x*x + y*y
			if d > outer || d < inner {
				continue
			}
			blendPixel(img, center.X+x, center.Y+y, clr)
		}
	}
}

func squareRectByName(name string, flipped bool) (image.Rectangle, bool) {
	file, rank, ok := parseSquare(name)
	if !ok {
		return image.Rectangle{}, false
	}
	return rectFor(file, rank, flipped), true
}

func squareRect(sq nchess.Square, flipped bool) image.Rectangle {
	return rectFor(int(sq.File()), int(sq.Rank()), flipped)
}

func rectFor(file, rank int, flipped bool) image.Rectangle {
	col := file
	row := 7 - rank
	if flipped {
		col = 7 - file
		row = rank
	}
	x := col * squareSize
	y := row * squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func parseSquare(name string) (file, rank int, ok bool) {
	if len(name) != 2 {
		return 0, 0, false
	}
	file = int(name[0] - 'a')
	rank = int(name[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return 0, 0, false
	}
	return file, rank, true
}

type pointF struct {
	X float64
	Y float64
}

func fillQuad(img *image.RGBA, p0, p1, p2, p3 pointF, clr color.Color) {
	fillTriangleF(img, p0, p1, p2, clr)
	fillTriangleF(img, p0, p2, p3, clr)
}

func fillTriangleF(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(math.Min(a.X, math.Min(b.X, c.X))))
	maxX := int(math.Ceil(math.Max(a.X, math.Max(b.X, c.X))))
	minY := int(math.Floor(math.Min(a.Y, math.Min(b.Y, c.Y))))
	maxY := int(math.Ceil(math.Max(a.Y, math.Max(b.Y, c.Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if pointInTriangle(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

func pointInTriangle(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	gamma := 1 - alpha - beta
	return alpha >= 0 && beta >= 0 && gamma >= 0
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}

	sr, sg, sb, sa := clr.RGBA()
	srcA := float64(sa) / 65535.0
	if srcA <= 0 {
		return
	}
	srcR := float64(sr) / 65535.0
	srcG := float64(sg) / 65535.0
	srcB := float64(sb) / 65535.0

	dst := img.RGBAAt(x, y)
	dstA := float64(dst.A) / 255.0
	var dstR, dstG, dstB float64
	if dstA > 0 {
		inv := 1.0 / dstA
		dstR = float64(dst.R) / 255.0 * inv
		dstG = float64(dst.G) / 255.0 * inv
		dstB = float64(dst.B) / 255.0 * inv
	}

	outA := srcA + dstA*(1-srcA)
	if outA <= 0 {
		img.SetRGBA(x, y, color.RGBA{})
		return
	}
	outR := (srcR*srcA + dstR*dstA*(1-srcA)) / outA
	outG := (srcG*srcA + dstG*dstA*(1-srcA)) / outA
	outB := (srcB*srcA + dstB*dstA*(1-srcA)) / outA

	img.SetRGBA(x, y, color.RGBA{
		R: clamp8(outR * outA * 255.0),
		G: clamp8(outG * outA * 255.0),
		B: clamp8(outB * outA * 255.0),
		A: clamp8(outA * 255.0),
	})
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
