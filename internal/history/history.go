// Package history records calculator results. Stores keep the newest entries
// up to a limit and list them newest first.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/config"
	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
)

// DefaultLimit is the number of entries kept when no limit is configured.
const DefaultLimit = 10

// ErrClosed is returned by a store after Close.
var ErrClosed = errors.New("history store is closed")

// Entry is one calculation as the user saw it.
type Entry struct {
	ID        string             `json:"id"`
	A         string             `json:"a"`
	B         string             `json:"b"`
	Operation timecode.Operation `json:"operation"`
	Result    string             `json:"result"`
	Format    timecode.Format    `json:"format"`
	Rate      timecode.Rate      `json:"rate"`
	Clamped   bool               `json:"clamped"`
	CreatedAt time.Time          `json:"created_at"`
}

// NewEntry renders a calculation in format f.
func NewEntry(a, b timecode.Timecode, op timecode.Operation, res timecode.Result, f timecode.Format) (Entry, error) {
	values := make([]string, 0, 3)
	for _, tc := range []timecode.Timecode{a, b, res.Timecode} {
		s, err := tc.Encode(f)
		if err != nil {
			return Entry{}, err
		}
		values = append(values, s)
	}
	return Entry{
		ID:        uuid.New().String(),
		A:         values[0],
		B:         values[1],
		Operation: op,
		Result:    values[2],
		Format:    f,
		Rate:      a.Rate(),
		Clamped:   res.Clamped,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// String renders the entry as "A + B = R [SMPTE @ 25fps]".
func (e Entry) String() string {
	return fmt.Sprintf("%s %s %s = %s [%s @ %sfps]", e.A, e.Operation.Symbol(), e.B, e.Result, e.Format.Label(), e.Rate)
}

// Store persists history entries.
type Store interface {
	// Add records an entry, evicting the oldest beyond the limit.
	Add(ctx context.Context, e Entry) error

	// List returns entries newest first.
	List(ctx context.Context) ([]Entry, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Ping checks the backing storage.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// New builds the store selected by cfg.Backend.
func New(cfg *config.HistoryConfig, redisCfg *config.RedisConfig, logger *logrus.Logger) (Store, error) {
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(limit), nil
	case "redis":
		if redisCfg == nil || len(redisCfg.Addresses) == 0 {
			return nil, fmt.Errorf("redis history backend requires an address")
		}
		client := redis.NewClient(&redis.Options{
			Addr:         redisCfg.Addresses[0],
			Password:     redisCfg.Password,
			DB:           redisCfg.DB,
			MaxRetries:   redisCfg.MaxRetries,
			DialTimeout:  redisCfg.DialTimeout,
			ReadTimeout:  redisCfg.ReadTimeout,
			WriteTimeout: redisCfg.WriteTimeout,
			PoolSize:     redisCfg.PoolSize,
			MinIdleConns: redisCfg.MinIdleConns,
		})
		return NewRedisStore(client, logger, cfg.RedisKey, limit), nil
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath, logger, limit)
	}
	return nil, fmt.Errorf("unknown history backend: %s", cfg.Backend)
}
