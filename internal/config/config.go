package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store modes. Auto resolves to the first configured backend: redis, then
// postgres, then the host document, then process memory.
const (
	StoreAuto     = "auto"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreDocument = "document"
	StoreMemory   = "memory"
)

type AppConfig struct {
	RedisURL    string
	DatabaseURL string

	StoreMode   string
	StateTTLSec int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		StoreMode:   StoreAuto,
		StateTTLSec: 30 * 24 * 3600,
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("CHESSBLOCK_REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("CHESSBLOCK_DATABASE_URL"))

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("CHESSBLOCK_STORE"))); v != "" {
		switch v {
		case StoreAuto, StoreRedis, StorePostgres, StoreDocument, StoreMemory:
			cfg.StoreMode = v
		default:
			return nil, fmt.Errorf("unknown CHESSBLOCK_STORE value %q", v)
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSBLOCK_STATE_TTL")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StateTTLSec = n
		}
	}

	if cfg.StoreMode == StoreRedis && cfg.RedisURL == "" {
		return nil, fmt.Errorf("CHESSBLOCK_REDIS_URL is required for the redis store")
	}
	if cfg.StoreMode == StorePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("CHESSBLOCK_DATABASE_URL is required for the postgres store")
	}

	return cfg, nil
}
