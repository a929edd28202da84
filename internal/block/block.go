// Package block parses and re-serializes the declarative source block a
// board is initialized from, and merges it with previously persisted state.
package block

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/karune/chessblock/internal/domain"
)

// ErrInvalidConfig marks a malformed block or an unsupported orientation or
// style value. The board is not created when parsing fails with it.
var ErrInvalidConfig = errors.New("invalid chessblock config")

var boardStyles = map[string]struct{}{
	"brown": {},
	"blue":  {},
	"green": {},
}

var pieceStyles = map[string]struct{}{
	"classic": {},
}

// BlockConfig is the parsed declarative source block. Pointer fields
// distinguish "absent" from an explicit false/zero, which the merge
// precedence rules depend on. The original yaml document is retained so
// unrecognized keys survive a write-back verbatim.
type BlockConfig struct {
	ID             string
	FEN            string
	PGN            string
	Orientation    domain.Orientation
	Free           *bool
	ViewOnly       *bool
	Drawable       *bool
	BoardStyle     string
	PieceStyle     string
	Shapes         []domain.Shape
	CurrentMoveIdx *int
	RememberCursor bool

	doc *yaml.Node
}

// Parse reads the block's yaml text. An empty block is valid and yields all
// defaults at merge time.
func Parse(src string) (*BlockConfig, error) {
	cfg := &BlockConfig{}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		cfg.doc = emptyDoc()
		return cfg, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: block is not a key/value mapping", ErrInvalidConfig)
	}
	cfg.doc = &doc

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value := root.Content[i+1]
		if err := cfg.applyKey(key, value); err != nil {
			return nil, err
		}
	}

	if cfg.Orientation != "" && !cfg.Orientation.Valid() {
		return nil, fmt.Errorf("%w: unknown orientation %q", ErrInvalidConfig, cfg.Orientation)
	}
	if cfg.BoardStyle != "" {
		if _, ok := boardStyles[cfg.BoardStyle]; !ok {
			return nil, fmt.Errorf("%w: unknown board style %q", ErrInvalidConfig, cfg.BoardStyle)
		}
	}
	if cfg.PieceStyle != "" {
		if _, ok := pieceStyles[cfg.PieceStyle]; !ok {
			return nil, fmt.Errorf("%w: unknown piece style %q", ErrInvalidConfig, cfg.PieceStyle)
		}
	}
	return cfg, nil
}

func (c *BlockConfig) applyKey(key string, value *yaml.Node) error {
	decode := func(target any) error {
		if err := value.Decode(target); err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrInvalidConfig, key, err)
		}
		return nil
	}

	switch key {
	case "id":
		return decode(&c.ID)
	case "fen":
		return decode(&c.FEN)
	case "pgn":
		return decode(&c.PGN)
	case "orientation":
		var s string
		if err := decode(&s); err != nil {
			return err
		}
		c.Orientation = domain.Orientation(strings.ToLower(strings.TrimSpace(s)))
	case "free":
		c.Free = new(bool)
		return decode(c.Free)
	case "viewOnly":
		c.ViewOnly = new(bool)
		return decode(c.ViewOnly)
	case "drawable":
		c.Drawable = new(bool)
		return decode(c.Drawable)
	case "boardStyle":
		var s string
		if err := decode(&s); err != nil {
			return err
		}
		c.BoardStyle = strings.ToLower(strings.TrimSpace(s))
	case "pieceStyle":
		var s string
		if err := decode(&s); err != nil {
			return err
		}
		c.PieceStyle = strings.ToLower(strings.TrimSpace(s))
	case "shapes":
		return decode(&c.Shapes)
	case "currentMoveIdx":
		c.CurrentMoveIdx = new(int)
		return decode(c.CurrentMoveIdx)
	case "rememberCursor":
		return decode(&c.RememberCursor)
	default:
		// Unrecognized keys stay in c.doc untouched and are re-emitted by
		// Render.
	}
	return nil
}

// Render serializes the block back to yaml, preserving unrecognized keys
// and their order from the original source.
func (c *BlockConfig) Render() (string, error) {
	doc := c.doc
	if doc == nil {
		doc = emptyDoc()
		c.doc = doc
	}
	root := doc.Content[0]

	setString(root, "id", c.ID)
	setString(root, "fen", c.FEN)
	setString(root, "pgn", c.PGN)
	setString(root, "orientation", string(c.Orientation))
	setBoolPtr(root, "free", c.Free)
	setBoolPtr(root, "viewOnly", c.ViewOnly)
	setBoolPtr(root, "drawable", c.Drawable)
	setString(root, "boardStyle", c.BoardStyle)
	setString(root, "pieceStyle", c.PieceStyle)
	if len(c.Shapes) > 0 {
		node := &yaml.Node{}
		if err := node.Encode(c.Shapes); err != nil {
			return "", fmt.Errorf("encode shapes: %w", err)
		}
		setKey(root, "shapes", node)
	} else {
		delKey(root, "shapes")
	}
	if c.CurrentMoveIdx != nil {
		node := &yaml.Node{}
		if err := node.Encode(*c.CurrentMoveIdx); err != nil {
			return "", fmt.Errorf("encode cursor: %w", err)
		}
		setKey(root, "currentMoveIdx", node)
	} else {
		delKey(root, "currentMoveIdx")
	}
	if c.RememberCursor {
		node := &yaml.Node{}
		if err := node.Encode(true); err != nil {
			return "", fmt.Errorf("encode rememberCursor: %w", err)
		}
		setKey(root, "rememberCursor", node)
	}

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("render block: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render block: %w", err)
	}
	return sb.String(), nil
}

// ApplyRecord folds a persisted record into the block so a declarative-
// source write-back reflects it. rememberCursor decides whether the cursor
// index is carried.
func (c *BlockConfig) ApplyRecord(rec *domain.GameStateRecord) {
	if rec == nil {
		return
	}
	if rec.BlockID != "" {
		c.ID = rec.BlockID
	}
	if rec.PGN != "" {
		c.PGN = rec.PGN
	}
	if rec.FEN != "" {
		c.FEN = rec.FEN
	}
	if rec.Orientation != "" {
		c.Orientation = rec.Orientation
	}
	free := rec.Free
	c.Free = &free
	c.Shapes = append([]domain.Shape(nil), rec.Shapes...)
	if c.RememberCursor && rec.CursorIdx != nil {
		idx := *rec.CursorIdx
		c.CurrentMoveIdx = &idx
	} else {
		c.CurrentMoveIdx = nil
	}
}

// GenerateID returns a fresh 8-character lowercase alphanumeric token used
// as the persistence key of a board instance.
func GenerateID() string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failure leaves no usable entropy source; an all-'a'
		// token still keys a single-instance store correctly.
		return "aaaaaaaa"
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b)
}

func emptyDoc() *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
	}
}

func setString(m *yaml.Node, key, value string) {
	if strings.TrimSpace(value) == "" {
		delKey(m, key)
		return
	}
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	setKey(m, key, node)
}

func setBoolPtr(m *yaml.Node, key string, value *bool) {
	if value == nil {
		return
	}
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprintf("%t", *value)}
	setKey(m, key, node)
}

func setKey(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

func delKey(m *yaml.Node, key string) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return
		}
	}
}
