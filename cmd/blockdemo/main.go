// blockdemo loads a chessblock from a host file, applies a sequence of
// commands and writes a PNG snapshot, exercising the full load -> merge ->
// reconcile -> persist flow against a real document.
//
// Usage:
//
//	blockdemo -doc board.md [-png out.png] [cmd ...]
//
// Commands: a move in from-to form (e2e4), "undo", "redo", "flip",
// "free=on", "free=off".
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/karune/chessblock/internal/boardbuilder"
	"github.com/karune/chessblock/internal/config"
	"github.com/karune/chessblock/internal/obslog"
	"github.com/karune/chessblock/internal/store"
)

type stderrNotifier struct{}

func (stderrNotifier) Notify(msg string) { fmt.Fprintln(os.Stderr, msg) }

func main() {
	docPath := flag.String("doc", "", "path to the host document containing the chessblock")
	pngPath := flag.String("png", "", "write a board snapshot PNG to this path")
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "logger init:", err)
		os.Exit(1)
	}
	logger := obslog.L()

	if strings.TrimSpace(*docPath) == "" {
		fmt.Fprintln(os.Stderr, "usage: blockdemo -doc board.md [-png out.png] [cmd ...]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	doc := &store.FileDocument{Path: *docPath}
	blockText, err := doc.ReadBlock()
	if err != nil {
		logger.Fatal("read block", zap.Error(err))
	}

	deps, err := boardbuilder.Build(ctx, blockText, doc, cfg, stderrNotifier{}, logger)
	if err != nil {
		logger.Fatal("build board", zap.Error(err))
	}
	defer deps.Close()

	ctrl := deps.Controller
	for _, cmd := range flag.Args() {
		switch {
		case cmd == "undo":
			err = ctrl.Undo(ctx)
		case cmd == "redo":
			err = ctrl.Redo(ctx)
		case cmd == "flip":
			ctrl.Flip(ctx)
		case cmd == "free=on":
			ctrl.ToggleFreeMove(ctx, true)
		case cmd == "free=off":
			ctrl.ToggleFreeMove(ctx, false)
		case len(cmd) >= 4:
			if !deps.Board.Drag(cmd[:2], cmd[2:4]) {
				err = fmt.Errorf("drag %s rejected", cmd)
			}
		default:
			err = fmt.Errorf("unknown command %q", cmd)
		}
		if err != nil {
			logger.Fatal("command failed", zap.String("cmd", cmd), zap.Error(err))
		}
	}

	snap, err := ctrl.Snapshot(ctx)
	if err != nil {
		logger.Fatal("snapshot", zap.Error(err))
	}

	fmt.Printf("id: %s\nfen: %s\nturn: %s check: %v cursor: %d\nmoves: %s\n",
		snap.BlockID, snap.FEN, snap.Turn, snap.Check, snap.CursorIdx,
		strings.Join(snap.MovesSAN, " "),
	)

	if strings.TrimSpace(*pngPath) != "" {
		if err := os.WriteFile(*pngPath, snap.BoardImage, 0o644); err != nil {
			logger.Fatal("write png", zap.Error(err))
		}
		logger.Info("snapshot written", zap.String("path", *pngPath), zap.Int("bytes", len(snap.BoardImage)))
	}
}
