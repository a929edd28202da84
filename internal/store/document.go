package store

import (
	"fmt"
	"os"
	"strings"
)

// HostDocument is the editor surface the declarative-source strategy writes
// through: it locates the block's text range and rewrites it in place. The
// host environment owns everything around that range.
type HostDocument interface {
	ReadBlock() (string, error)
	WriteBlock(text string) error
}

const blockFence = "```chessblock"

// FileDocument hosts a chessblock fenced code block inside a plain file.
// When the file carries no fence the whole file is treated as the block
// body. Used by the demo binary and round-trip tests.
type FileDocument struct {
	Path string
}

func (d *FileDocument) ReadBlock() (string, error) {
	raw, err := os.ReadFile(d.Path)
	if err != nil {
		return "", fmt.Errorf("read host document: %w", err)
	}
	text := string(raw)
	start, end, ok := fenceRange(text)
	if !ok {
		return text, nil
	}
	return text[start:end], nil
}

func (d *FileDocument) WriteBlock(blockText string) error {
	raw, err := os.ReadFile(d.Path)
	if err != nil {
		return fmt.Errorf("read host document: %w", err)
	}
	text := string(raw)
	out := blockText
	if start, end, ok := fenceRange(text); ok {
		out = text[:start] + blockText + text[end:]
	}
	if err := os.WriteFile(d.Path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write host document: %w", err)
	}
	return nil
}

// fenceRange returns the byte range of the first chessblock fence body.
func fenceRange(text string) (start, end int, ok bool) {
	idx := strings.Index(text, blockFence)
	if idx < 0 {
		return 0, 0, false
	}
	bodyStart := idx + len(blockFence)
	if nl := strings.IndexByte(text[bodyStart:], '\n'); nl >= 0 {
		bodyStart += nl + 1
	} else {
		return 0, 0, false
	}
	closing := strings.Index(text[bodyStart:], "```")
	if closing < 0 {
		return 0, 0, false
	}
	return bodyStart, bodyStart + closing, true
}
