package block

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karune/chessblock/internal/domain"
)

func TestParseFullBlock(t *testing.T) {
	src := `id: abc123xy
fen: "4k3/8/8/8/8/8/8/4K3 w - - 0 1"
orientation: black
free: false
viewOnly: true
drawable: false
boardStyle: blue
pieceStyle: classic
shapes:
  - orig: e4
    brush: green
  - orig: d2
    dest: d4
    brush: red
rememberCursor: true
currentMoveIdx: 3
`
	cfg, err := Parse(src)
	require.NoError(t, err)

	assert.Equal(t, "abc123xy", cfg.ID)
	assert.Equal(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1", cfg.FEN)
	assert.Equal(t, domain.OrientationBlack, cfg.Orientation)
	require.NotNil(t, cfg.Free)
	assert.False(t, *cfg.Free)
	require.NotNil(t, cfg.ViewOnly)
	assert.True(t, *cfg.ViewOnly)
	require.NotNil(t, cfg.Drawable)
	assert.False(t, *cfg.Drawable)
	assert.Equal(t, "blue", cfg.BoardStyle)
	require.Len(t, cfg.Shapes, 2)
	assert.Equal(t, domain.Shape{Orig: "e4", Brush: "green"}, cfg.Shapes[0])
	assert.Equal(t, domain.Shape{Orig: "d2", Dest: "d4", Brush: "red"}, cfg.Shapes[1])
	assert.True(t, cfg.RememberCursor)
	require.NotNil(t, cfg.CurrentMoveIdx)
	assert.Equal(t, 3, *cfg.CurrentMoveIdx)
}

func TestParseEmptyBlock(t *testing.T) {
	cfg, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, cfg.ID)
	assert.Nil(t, cfg.Free)
	assert.Nil(t, cfg.ViewOnly)

	// An empty block still renders.
	_, err = cfg.Render()
	require.NoError(t, err)
}

func TestParseRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"orientation": "orientation: sideways",
		"boardStyle":  "boardStyle: neon",
		"pieceStyle":  "pieceStyle: staunton3d",
		"notAMapping": "- a\n- b",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(src)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestRenderPreservesUnknownKeys(t *testing.T) {
	src := `id: abc123xy
theme-extras: sparkle
orientation: white
`
	cfg, err := Parse(src)
	require.NoError(t, err)

	cfg.FEN = "4k3/8/8/8/8/8/8/4K3 w - - 0 1"
	out, err := cfg.Render()
	require.NoError(t, err)

	assert.Contains(t, out, "theme-extras: sparkle")
	assert.Contains(t, out, "id: abc123xy")
	assert.Contains(t, out, "fen:")

	// The rendered text must parse back to the same config.
	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, again.ID)
	assert.Equal(t, cfg.FEN, again.FEN)
	assert.Equal(t, cfg.Orientation, again.Orientation)
}

func TestApplyRecordCursorGating(t *testing.T) {
	cursor := 2
	rec := &domain.GameStateRecord{
		BlockID:     "abc123xy",
		FEN:         "4k3/8/8/8/8/8/8/4K3 w - - 0 1",
		PGN:         "1. e4",
		Free:        true,
		Orientation: domain.OrientationBlack,
		CursorIdx:   &cursor,
	}

	cfg := &BlockConfig{RememberCursor: true}
	cfg.ApplyRecord(rec)
	require.NotNil(t, cfg.CurrentMoveIdx)
	assert.Equal(t, 2, *cfg.CurrentMoveIdx)
	assert.Equal(t, domain.OrientationBlack, cfg.Orientation)
	require.NotNil(t, cfg.Free)
	assert.True(t, *cfg.Free)

	// Without the opt-in the cursor never reaches the source block.
	cfg = &BlockConfig{}
	cfg.ApplyRecord(rec)
	assert.Nil(t, cfg.CurrentMoveIdx)
}

func TestGenerateID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		id := GenerateID()
		require.Len(t, id, 8)
		assert.Equal(t, strings.ToLower(id), id)
		for _, r := range id {
			ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
			require.True(t, ok, "unexpected rune %q in %s", r, id)
		}
		seen[id] = struct{}{}
	}
	// 50 draws from a 36^8 space colliding down to a handful would mean the
	// generator is broken.
	assert.Greater(t, len(seen), 45)
}
