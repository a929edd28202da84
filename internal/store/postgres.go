package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/karune/chessblock/internal/domain"
)

// PostgresStore keeps records as jsonb rows keyed by block id, for
// deployments that already carry a relational database.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(databaseURL string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{db: db, logger: logger}, nil
}

// Migrate creates the backing table when it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS chessblock_states (
			block_id   TEXT PRIMARY KEY,
			record     JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate chessblock_states: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) Read(ctx context.Context, id string) (*domain.GameStateRecord, error) {
	const query = `SELECT record FROM chessblock_states WHERE block_id = $1`
	var raw []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", id, err)
	}
	var rec domain.GameStateRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Warn("malformed stored state, treating as absent",
			zap.String("block_id", id),
			zap.Error(err),
		)
		return nil, nil
	}
	return &rec, nil
}

func (s *PostgresStore) Write(ctx context.Context, id string, rec *domain.GameStateRecord) error {
	if rec == nil {
		return fmt.Errorf("nil game state record")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal state %s: %w", id, err)
	}
	const query = `
		INSERT INTO chessblock_states (block_id, record, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (block_id) DO UPDATE
		SET record = EXCLUDED.record, updated_at = now()`
	if _, err := s.db.ExecContext(ctx, query, id, raw); err != nil {
		return fmt.Errorf("write state %s: %w", id, err)
	}
	return nil
}
