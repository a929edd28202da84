// Package boardbuilder performs the load-time wiring of one board instance:
// parse the declarative block, merge it with persisted state, initialize the
// rules engine, rebuild the ledger, create the view and hand everything to
// the synchronization controller.
package boardbuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/karune/chessblock/internal/block"
	"github.com/karune/chessblock/internal/boardctl"
	"github.com/karune/chessblock/internal/boardview"
	"github.com/karune/chessblock/internal/config"
	"github.com/karune/chessblock/internal/domain"
	"github.com/karune/chessblock/internal/ledger"
	"github.com/karune/chessblock/internal/rules"
	"github.com/karune/chessblock/internal/store"
)

// Deps is one fully wired board instance.
type Deps struct {
	Controller *boardctl.Controller
	Board      *boardview.EmbeddedBoard
	Engine     *rules.Engine
	Store      store.Store
	Effective  block.EffectiveConfig
}

// Close releases the store when it owns external connections.
func (d *Deps) Close() error {
	if closer, ok := d.Store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Build wires a board from its block text. doc may be nil when no host
// document is reachable; the document store mode and the id write-back then
// degrade with a warning instead of failing the load.
func Build(ctx context.Context, blockText string, doc store.HostDocument, cfg *config.AppConfig, notifier boardctl.Notifier, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		cfg = &config.AppConfig{StoreMode: config.StoreAuto}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	declared, err := block.Parse(blockText)
	if err != nil {
		return nil, err
	}

	st, err := selectStore(ctx, cfg, doc, logger)
	if err != nil {
		return nil, err
	}

	var persisted *domain.GameStateRecord
	if declared.ID != "" {
		persisted, err = st.Read(ctx, declared.ID)
		if err != nil {
			// An unreachable store degrades to a fresh board; the block
			// itself still fully describes the initial state.
			logger.Warn("persisted state unavailable",
				zap.String("block_id", declared.ID),
				zap.Error(err),
			)
			persisted = nil
		}
	}

	eff := block.Merge(declared, persisted)

	engine, initialFEN, err := buildEngine(declared, eff, logger)
	if err != nil {
		return nil, err
	}

	led := ledger.FromMoves(engine.Moves())
	if eff.RememberCursor && eff.CursorIdx != nil {
		led.SetCursor(*eff.CursorIdx)
		if !led.AtEnd() {
			target := initialFEN
			if cur := led.Cursor(); cur >= 0 {
				target = led.At(cur).FEN
			}
			if err := engine.LoadFEN(target); err != nil {
				return nil, fmt.Errorf("restore cursor position: %w", err)
			}
		}
	}

	board := boardview.NewEmbeddedBoard(boardview.VisualState{
		FEN:         engine.FEN(),
		Orientation: eff.Orientation,
		Free:        eff.Free,
		ViewOnly:    eff.ViewOnly,
		Drawable:    eff.Drawable,
		Shapes:      eff.Shapes,
		BoardStyle:  eff.BoardStyle,
		PieceStyle:  eff.PieceStyle,
	})

	recordUUID := uuid.NewString()
	if persisted != nil && persisted.RecordUUID != "" {
		recordUUID = persisted.RecordUUID
	}

	ctrl := boardctl.New(engine, board, st, led, boardctl.Options{
		BlockID:        eff.ID,
		InitialFEN:     initialFEN,
		BoardStyle:     eff.BoardStyle,
		PieceStyle:     eff.PieceStyle,
		Free:           eff.Free,
		ViewOnly:       eff.ViewOnly,
		RememberCursor: eff.RememberCursor,
		RecordUUID:     recordUUID,
		Shapes:         eff.Shapes,
		Notifier:       notifier,
		Logger:         logger,
	})

	if eff.GeneratedID {
		writeBackID(declared, eff.ID, doc, notifier, logger)
	}

	return &Deps{
		Controller: ctrl,
		Board:      board,
		Engine:     engine,
		Store:      st,
		Effective:  eff,
	}, nil
}

// buildEngine initializes the rules engine from the effective config.
// A persisted UCI move list wins; it replays from the block's declared
// diagram. Game notation comes next, then a bare diagram.
func buildEngine(declared *block.BlockConfig, eff block.EffectiveConfig, logger *zap.Logger) (*rules.Engine, string, error) {
	startFEN := rules.NewEngine().FEN()

	initialFEN := declared.FEN
	if initialFEN == "" {
		initialFEN = startFEN
	}

	if len(eff.MovesUCI) > 0 {
		engine, err := rules.Replay(declared.FEN, eff.MovesUCI)
		if err == nil {
			return engine, initialFEN, nil
		}
		// Corrupt persisted history must not brick the block: fall back to
		// the declared state alone.
		logger.Warn("persisted moves no longer replay, falling back to declared state",
			zap.String("block_id", eff.ID),
			zap.Error(err),
		)
	}

	engine := rules.NewEngine()
	switch {
	case declared.PGN != "":
		if err := engine.LoadPGN(declared.PGN); err != nil {
			return nil, "", fmt.Errorf("%w: %v", block.ErrInvalidConfig, err)
		}
		return engine, startFEN, nil
	case declared.FEN != "":
		if err := engine.LoadFEN(declared.FEN); err != nil {
			return nil, "", fmt.Errorf("%w: %v", block.ErrInvalidConfig, err)
		}
		return engine, declared.FEN, nil
	default:
		return engine, startFEN, nil
	}
}

func selectStore(ctx context.Context, cfg *config.AppConfig, doc store.HostDocument, logger *zap.Logger) (store.Store, error) {
	mode := cfg.StoreMode
	if mode == "" || mode == config.StoreAuto {
		switch {
		case cfg.RedisURL != "":
			mode = config.StoreRedis
		case cfg.DatabaseURL != "":
			mode = config.StorePostgres
		case doc != nil:
			mode = config.StoreDocument
		default:
			mode = config.StoreMemory
		}
	}

	switch mode {
	case config.StoreRedis:
		return store.NewRedisStore(cfg.RedisURL, time.Duration(cfg.StateTTLSec)*time.Second, logger)
	case config.StorePostgres:
		pg, err := store.NewPostgresStore(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	case config.StoreDocument:
		if doc == nil {
			return nil, fmt.Errorf("document store requires a host document")
		}
		return store.NewBlockStore(doc, logger), nil
	default:
		return store.NewMemoryStore(), nil
	}
}

// writeBackID performs the one-time declarative-source update that makes a
// generated identifier stable across reloads.
func writeBackID(declared *block.BlockConfig, id string, doc store.HostDocument, notifier boardctl.Notifier, logger *zap.Logger) {
	if doc == nil {
		logger.Warn("generated block id cannot be written back without a host document",
			zap.String("block_id", id),
		)
		return
	}
	declared.ID = id
	rendered, err := declared.Render()
	if err == nil {
		err = doc.WriteBlock(rendered)
	}
	if err != nil {
		logger.Error("block id write-back failed",
			zap.String("block_id", id),
			zap.Error(err),
		)
		if notifier != nil {
			notifier.Notify("chessblock: board id could not be saved; state will not survive reloads")
		}
		return
	}
	logger.Info("assigned block id", zap.String("block_id", id))
}
