package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/karune/chessblock/internal/domain"
)

const defaultStateTTL = 30 * 24 * time.Hour

// RedisStore keeps one JSON record per board instance under
// chessblock:state:<id>, refreshed with a TTL on every write.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisStore, error) {
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, ttl: ttl, logger: logger}, nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func (s *RedisStore) Read(ctx context.Context, id string) (*domain.GameStateRecord, error) {
	raw, err := s.rdb.Get(ctx, stateKey(id)).Bytes()
	if err == redis.Nil {
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

func (s *RedisStore) Write(ctx context.Context, id string, rec *domain.GameStateRecord) error {
	if rec == nil {
		return fmt.Errorf("nil game state record")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal state %s: %w", id, err)
	}
	if err := s.rdb.Set(ctx, stateKey(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("write state %s: %w", id, err)
	}
	return nil
}

func stateKey(id string) string { return "chessblock:state:" + strings.TrimSpace(id) }

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
