package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/karune/chessblock/internal/domain"
)

func newTestDocument(t *testing.T, content string) *FileDocument {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return &FileDocument{Path: path}
}

const hostPage = "# My game\n\nSome prose before.\n\n```chessblock\nid: abc123xy\norientation: white\ntheme-extras: sparkle\n```\n\nSome prose after.\n"

func TestFileDocumentFenceRange(t *testing.T) {
	doc := newTestDocument(t, hostPage)
	body, err := doc.ReadBlock()
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !strings.Contains(body, "id: abc123xy") || strings.Contains(body, "prose") {
		t.Fatalf("unexpected block body: %q", body)
	}

	if err := doc.WriteBlock("id: abc123xy\norientation: black\n"); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	raw, _ := os.ReadFile(doc.Path)
	text := string(raw)
	if !strings.Contains(text, "Some prose before.") || !strings.Contains(text, "Some prose after.") {
		t.Fatalf("surrounding text lost:\n%s", text)
	}
	if !strings.Contains(text, "orientation: black") {
		t.Fatalf("block not rewritten:\n%s", text)
	}
}

func TestFileDocumentWithoutFence(t *testing.T) {
	doc := newTestDocument(t, "id: abc123xy\n")
	body, err := doc.ReadBlock()
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if body != "id: abc123xy\n" {
		t.Fatalf("fenceless file should read whole: %q", body)
	}
}

func TestBlockStoreRoundTrip(t *testing.T) {
	doc := newTestDocument(t, hostPage)
	s := NewBlockStore(doc, nil)
	ctx := context.Background()

	got, err := s.Read(ctx, "abc123xy")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got == nil || got.BlockID != "abc123xy" {
		t.Fatalf("expected record from declared block, got %+v", got)
	}

	rec := sampleRecord("abc123xy")
	if err := s.Write(ctx, "abc123xy", rec); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// The write-back keeps unrelated keys and the host page intact.
	raw, _ := os.ReadFile(doc.Path)
	if !strings.Contains(string(raw), "theme-extras: sparkle") {
		t.Fatalf("unknown key lost:\n%s", raw)
	}
	if !strings.Contains(string(raw), "Some prose after.") {
		t.Fatalf("host page body lost:\n%s", raw)
	}

	got, err = s.Read(ctx, "abc123xy")
	if err != nil || got == nil {
		t.Fatalf("re-Read: rec=%+v err=%v", got, err)
	}
	if got.FEN != rec.FEN || got.PGN != rec.PGN || got.Orientation != domain.OrientationBlack {
		t.Fatalf("round-tripped record mismatch: %+v", got)
	}
}

func TestBlockStoreIDMismatchReadsAbsent(t *testing.T) {
	doc := newTestDocument(t, hostPage)
	s := NewBlockStore(doc, nil)

	got, err := s.Read(context.Background(), "otherid1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != nil {
		t.Fatalf("foreign id should read absent, got %+v", got)
	}
}

func TestBlockStoreUnparseableTextDegrades(t *testing.T) {
	doc := newTestDocument(t, "```chessblock\n- not\n- a-mapping\n```\n")
	s := NewBlockStore(doc, nil)
	ctx := context.Background()

	got, err := s.Read(ctx, "abc123xy")
	if err != nil || got != nil {
		t.Fatalf("unparseable block should read absent: rec=%+v err=%v", got, err)
	}
	// The write becomes a no-op instead of clobbering the user's text.
	if err := s.Write(ctx, "abc123xy", sampleRecord("abc123xy")); err != nil {
		t.Fatalf("Write should degrade silently: %v", err)
	}
	raw, _ := os.ReadFile(doc.Path)
	if !strings.Contains(string(raw), "a-mapping") {
		t.Fatalf("degraded write clobbered the block:\n%s", raw)
	}
}
