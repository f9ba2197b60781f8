package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/config"
	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

func setupTestRedis(t *testing.T, limit int) (*miniredis.Miniredis, *RedisStore) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client, testLogger(), "test:history", limit)
	t.Cleanup(func() {
		_ = store.Close()
		mr.Close()
	})
	return mr, store
}

func entry(n int) Entry {
	return Entry{
		ID:        fmt.Sprintf("entry-%d", n),
		A:         fmt.Sprintf("00:00:%02d:00", n),
		B:         "00:00:01:00",
		Operation: timecode.OpAdd,
		Result:    fmt.Sprintf("00:00:%02d:00", n+1),
		Format:    timecode.FormatSMPTE,
		Rate:      timecode.Rate25,
		CreatedAt: time.Unix(int64(1700000000+n), 0).UTC(),
	}
}

func TestNewEntry(t *testing.T) {
	a, err := timecode.Parse("00:00:05:00", timecode.FormatSMPTE, timecode.Rate25, timecode.Options{})
	require.NoError(t, err)
	b, err := timecode.Parse("00:00:10:00", timecode.FormatSMPTE, timecode.Rate25, timecode.Options{})
	require.NoError(t, err)

	res, err := timecode.Sub(a, b)
	require.NoError(t, err)

	e, err := NewEntry(a, b, timecode.OpSubtract, res, timecode.FormatSMPTE)
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.True(t, e.Clamped)
	assert.Equal(t, "00:00:05:00 − 00:00:10:00 = 00:00:00:00 [SMPTE @ 25fps]", e.String())

	_, err = NewEntry(a, b, timecode.OpAdd, res, timecode.Format("edl"))
	assert.ErrorIs(t, err, timecode.ErrUnknownFormat)
}

func TestEntry_String(t *testing.T) {
	e := entry(3)
	e.Format = timecode.FormatFFmpeg
	e.Rate = timecode.Rate29_97
	assert.Equal(t, "00:00:03:00 + 00:00:01:00 = 00:00:04:00 [FFmpeg @ 29.97fps]", e.String())
}

// storeContract exercises behavior every backend shares.
func storeContract(t *testing.T, store Store, limit int) {
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	for i := 0; i < limit+3; i++ {
		require.NoError(t, store.Add(ctx, entry(i)))
	}

	entries, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, limit)
	assert.Equal(t, entry(limit+2), entries[0], "newest first")
	assert.Equal(t, entry(3), entries[limit-1], "oldest kept")

	require.NoError(t, store.Clear(ctx))
	entries, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(5)
	storeContract(t, store, 5)

	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.Add(context.Background(), entry(1)), ErrClosed)
	assert.ErrorIs(t, store.Ping(context.Background()), ErrClosed)
}

func TestMemoryStore_ListIsCopy(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, entry(1)))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	entries[0].Result = "changed"

	again, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, entry(1).Result, again[0].Result)
}

func TestRedisStore(t *testing.T) {
	_, store := setupTestRedis(t, 4)
	storeContract(t, store, 4)
}

func TestRedisStore_SkipsMalformed(t *testing.T) {
	mr, store := setupTestRedis(t, 10)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, entry(1)))
	_, err := mr.Lpush("test:history", "not json")
	require.NoError(t, err)

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "entry-1", entries[0].ID)
}

func TestRedisStore_PingFailure(t *testing.T) {
	mr, store := setupTestRedis(t, 10)
	mr.Close()

	assert.Error(t, store.Ping(context.Background()))
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := NewSQLiteStore(path, testLogger(), 6)
	require.NoError(t, err)
	defer store.Close()

	storeContract(t, store, 6)
}

func TestSQLiteStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path, testLogger(), 10)
	require.NoError(t, err)
	e := entry(7)
	e.Clamped = true
	e.Rate = timecode.Rate29_97
	require.NoError(t, store.Add(ctx, e))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path, testLogger(), 10)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e, entries[0])
}

func TestNew(t *testing.T) {
	store, err := New(&config.HistoryConfig{Backend: "memory"}, nil, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store, err = New(
		&config.HistoryConfig{Backend: "redis", RedisKey: "k", Limit: 3},
		&config.RedisConfig{Addresses: []string{mr.Addr()}, PoolSize: 2},
		testLogger(),
	)
	require.NoError(t, err)
	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, store.Close())

	store, err = New(&config.HistoryConfig{Backend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "h.db")}, nil, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	_, err = New(&config.HistoryConfig{Backend: "redis"}, &config.RedisConfig{}, testLogger())
	assert.Error(t, err)

	_, err = New(&config.HistoryConfig{Backend: "etcd"}, nil, testLogger())
	assert.Error(t, err)
}
