// Package boardctl is the synchronization controller: after every user
// action it reconciles the rules engine, the board view and the persisted
// record, and moves the history cursor without ever truncating the ledger.
package boardctl

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/karune/chessblock/internal/boardview"
	"github.com/karune/chessblock/internal/domain"
	"github.com/karune/chessblock/internal/ledger"
	"github.com/karune/chessblock/internal/rules"
	"github.com/karune/chessblock/internal/store"
	"github.com/karune/chessblock/pkg/blockdto"
)

var (
	// ErrReplayMode rejects a new move while the cursor is behind the
	// ledger end. Redo history is never discarded.
	ErrReplayMode = errors.New("board is replaying history")
	// ErrViewOnly rejects interaction with a view-only board.
	ErrViewOnly = errors.New("board is view-only")
)

// Notifier surfaces user-visible notices (for example "not saved") to the
// host UI.
type Notifier interface {
	Notify(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

// Options configures a controller instance.
type Options struct {
	BlockID        string
	InitialFEN     string
	BoardStyle     string
	PieceStyle     string
	Free           bool
	ViewOnly       bool
	RememberCursor bool
	RecordUUID     string
	Shapes         []domain.Shape
	Notifier       Notifier
	Logger         *zap.Logger
}

// Controller owns the ledger and its cursor. It references the rules engine
// and the view, both supplied at construction, and persists best-effort
// through the store. Methods are not called concurrently for one instance.
type Controller struct {
	engine *rules.Engine
	view   boardview.View
	led    *ledger.Ledger
	st     store.Store

	blockID        string
	recordUUID     string
	initialFEN     string
	boardStyle     string
	pieceStyle     string
	free           bool
	viewOnly       bool
	rememberCursor bool
	shapes         []domain.Shape

	notifier Notifier
	logger   *zap.Logger
}

// New wires the controller into the view's interaction callbacks and pushes
// the initial reconciled state.
func New(engine *rules.Engine, view boardview.View, st store.Store, led *ledger.Ledger, opts Options) *Controller {
	if led == nil {
		led = ledger.FromMoves(engine.Moves())
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.InitialFEN == "" {
		opts.InitialFEN = rules.NewEngine().FEN()
	}
	if opts.BoardStyle == "" {
		opts.BoardStyle = domain.DefaultBoardStyle
	}
	if opts.PieceStyle == "" {
		opts.PieceStyle = domain.DefaultPieceStyle
	}

	c := &Controller{
		engine:         engine,
		view:           view,
		led:            led,
		st:             st,
		blockID:        opts.BlockID,
		recordUUID:     opts.RecordUUID,
		initialFEN:     opts.InitialFEN,
		boardStyle:     opts.BoardStyle,
		pieceStyle:     opts.PieceStyle,
		free:           opts.Free,
		viewOnly:       opts.ViewOnly,
		rememberCursor: opts.RememberCursor,
		shapes:         append([]domain.Shape(nil), opts.Shapes...),
		notifier:       opts.Notifier,
		logger:         opts.Logger,
	}

	view.HandleMove(func(from, to string) {
		if err := c.ApplyMove(context.Background(), from, to); err != nil {
			c.logger.Debug("move rejected",
				zap.String("block_id", c.blockID),
				zap.String("from", from),
				zap.String("to", to),
				zap.Error(err),
			)
		}
	})
	view.HandleShapes(func(shapes []domain.Shape) {
		c.SetShapes(context.Background(), shapes)
	})

	c.push()
	return c
}

// ApplyMove applies origin->destination for the side to move. Illegal input
// leaves every state source unchanged; the view is re-pushed from the
// engine so a speculatively drawn drag reverts.
func (c *Controller) ApplyMove(ctx context.Context, from, to string) error {
	if c.viewOnly {
		return ErrViewOnly
	}
	if c.free {
		// Free drags bypass rules and ledger entirely; the flag itself is
		// already persisted by ToggleFreeMove.
		return nil
	}
	if !c.led.AtEnd() {
		c.push()
		return ErrReplayMode
	}

	mv, err := c.engine.ApplyMove(from, to, "")
	if err != nil {
		c.push()
		return err
	}
	if err := c.led.Append(mv); err != nil {
		// Unreachable after the AtEnd check; resync rather than diverge.
		c.push()
		return err
	}

	c.logger.Info("move applied",
		zap.String("block_id", c.blockID),
		zap.String("san", mv.SAN),
		zap.String("uci", mv.UCI),
		zap.Int("cursor", c.led.Cursor()),
	)
	c.push()
	c.persist(ctx)
	return nil
}

// Undo steps the cursor back one move. At the start it is a no-op: no state
// change, no persistence write. The engine rewinds by reloading the diagram
// recorded at the target ledger index, keeping engine and ledger in
// lockstep under replay.
func (c *Controller) Undo(ctx context.Context) error {
	if c.led.AtStart() {
		return nil
	}
	c.led.SetCursor(c.led.Cursor() - 1)

	target := c.initialFEN
	if cur := c.led.Cursor(); cur >= 0 {
		target = c.led.At(cur).FEN
	}
	if err := c.engine.LoadFEN(target); err != nil {
		return err
	}
	c.push()
	if c.rememberCursor {
		c.persist(ctx)
	}
	return nil
}

// Redo steps the cursor forward one move, replaying the stored move through
// the rules engine. At the end it is a no-op.
func (c *Controller) Redo(ctx context.Context) error {
	if c.led.AtEnd() {
		return nil
	}
	next := c.led.Cursor() + 1
	mv := c.led.At(next)
	if _, err := c.engine.ApplyUCI(mv.UCI); err != nil {
		// The stored move no longer replays; fall back to the recorded
		// diagram so engine and view cannot disagree.
		if loadErr := c.engine.LoadFEN(mv.FEN); loadErr != nil {
			return loadErr
		}
	}
	c.led.SetCursor(next)
	c.push()
	if c.rememberCursor {
		c.persist(ctx)
	}
	return nil
}

// ToggleFreeMove enables or disables free-drag mode. Enabling detaches the
// destination constraints; disabling resynchronizes the view from the rules
// engine, the only state the controller can vouch for after free dragging.
func (c *Controller) ToggleFreeMove(ctx context.Context, enabled bool) {
	if c.free == enabled {
		return
	}
	c.free = enabled
	c.push()
	c.persist(ctx)
}

// Flip toggles the board orientation and persists it. No rules-engine
// interaction.
func (c *Controller) Flip(ctx context.Context) {
	c.view.ToggleOrientation()
	c.persist(ctx)
}

// SetShapes replaces the drawn annotations, renders them and persists.
func (c *Controller) SetShapes(ctx context.Context, shapes []domain.Shape) {
	c.shapes = append([]domain.Shape(nil), shapes...)
	c.push()
	c.persist(ctx)
}

// Ledger exposes the move history for hosts rendering a move list.
func (c *Controller) Ledger() *ledger.Ledger { return c.led }

// FreeMove reports whether free-drag mode is active.
func (c *Controller) FreeMove() bool { return c.free }

// Snapshot summarizes the board for the host, including a rendered image.
func (c *Controller) Snapshot(ctx context.Context) (*blockdto.BoardSnapshot, error) {
	state := c.view.State()
	img, err := boardview.Render(ctx, state)
	if err != nil {
		return nil, err
	}
	moves := c.led.Moves()
	san := make([]string, len(moves))
	for i, mv := range moves {
		san[i] = mv.SAN
	}
	return &blockdto.BoardSnapshot{
		BlockID:     c.blockID,
		FEN:         c.engine.FEN(),
		PGN:         c.ledgerPGN(),
		Turn:        c.engine.Turn(),
		Check:       c.engine.InCheck(),
		Free:        c.free,
		Orientation: string(state.Orientation),
		MovesSAN:    san,
		CursorIdx:   c.led.Cursor(),
		BoardImage:  img,
	}, nil
}

// push recomputes the full visual state from the rules engine and hands it
// to the view. Every failure path ends here, so engine and view never
// disagree after a partial step.
func (c *Controller) push() {
	fen := c.engine.FEN()
	turn := c.engine.Turn()
	check := c.engine.InCheck()
	free := c.free
	viewOnly := c.viewOnly

	update := boardview.StateUpdate{
		FEN:      &fen,
		Turn:     &turn,
		Check:    &check,
		Free:     &free,
		ViewOnly: &viewOnly,
		Shapes:   c.shapes,
		LastMove: c.lastMove(),
	}
	if c.liveMode() {
		update.Dests = c.engine.LegalDestinations()
	} else {
		update.ClearDests = true
	}
	if len(c.shapes) == 0 {
		update.ClearShapes = true
	}
	c.view.SetState(update)
}

// liveMode reports whether new moves are currently accepted.
func (c *Controller) liveMode() bool {
	return c.led.AtEnd() && !c.free && !c.viewOnly && !c.engine.GameOver()
}

func (c *Controller) lastMove() []string {
	cur := c.led.Cursor()
	if cur < 0 {
		return []string{}
	}
	mv := c.led.At(cur)
	return []string{mv.From, mv.To}
}

// persist writes the canonical snapshot best-effort. Failures degrade to
// "not saved": logged, surfaced through the notifier, never propagated.
func (c *Controller) persist(ctx context.Context) {
	rec := c.buildRecord()
	if err := c.st.Write(ctx, c.blockID, rec); err != nil {
		c.logger.Error("persist game state failed",
			zap.String("block_id", c.blockID),
			zap.Error(err),
		)
		c.notifier.Notify("chessblock: latest change was not saved")
	}
}

func (c *Controller) buildRecord() *domain.GameStateRecord {
	moves := c.led.UCIMoves()

	endFEN := c.initialFEN
	if n := c.led.Len(); n > 0 {
		endFEN = c.led.At(n - 1).FEN
	}

	var pgn string
	if c.led.AtEnd() {
		pgn = c.engine.PGN()
	} else {
		pgn = c.ledgerPGN()
	}

	rec := &domain.GameStateRecord{
		BlockID:     c.blockID,
		RecordUUID:  c.recordUUID,
		MovesUCI:    moves,
		FEN:         endFEN,
		PGN:         pgn,
		Free:        c.free,
		Orientation: c.view.State().Orientation,
		BoardStyle:  c.boardStyle,
		PieceStyle:  c.pieceStyle,
		Shapes:      append([]domain.Shape(nil), c.shapes...),
		UpdatedAt:   time.Now(),
	}
	if c.rememberCursor {
		cur := c.led.Cursor()
		rec.CursorIdx = &cur
	}
	return rec
}

// ledgerPGN serializes the full ledger regardless of cursor position; the
// live engine may hold a rewound, truncated history.
func (c *Controller) ledgerPGN() string {
	pgn, err := rules.PGNFromMoves(c.initialFEN, c.led.UCIMoves())
	if err != nil {
		c.logger.Warn("ledger replay for pgn failed",
			zap.String("block_id", c.blockID),
			zap.Error(err),
		)
		return ""
	}
	return pgn
}
