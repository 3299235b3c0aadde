package dedup

import (
	"fmt"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
)

// New builds the Store selected by cfg.Backend
func New(cfg config.DedupConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		store, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "redis":
		store, err := NewRedis(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown dedup backend %q", cfg.Backend)
	}
}
