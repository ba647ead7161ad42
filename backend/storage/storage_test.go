package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"coursetrack/backend/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) Storage {
	cfg := &config.Config{
		StorageDriver: config.DriverSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "test.db"),
	}
	db, err := OpenDB(cfg)
	require.NoError(t, err)
	store := NewSQL(db)
	require.NoError(t, store.Migrate())
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store
}

func setupRedis(t *testing.T) (Storage, *miniredis.Miniredis) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	store := NewRedis(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func backends() map[string]func(t *testing.T) Storage {
	return map[string]func(t *testing.T) Storage{
		"memory": func(t *testing.T) Storage { return NewMemory() },
		"sqlite": setupSQLite,
		"redis": func(t *testing.T) Storage {
			s, _ := setupRedis(t)
			return s
		},
	}
}

func TestStorageBackends(t *testing.T) {
	for name, setup := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("get missing key", func(t *testing.T) {
				s := setup(t)
				_, ok, err := s.Get(ctx, "missing")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("set overwrites", func(t *testing.T) {
				s := setup(t)
				require.NoError(t, s.Set(ctx, "k", "one"))
				require.NoError(t, s.Set(ctx, "k", "two"))
				v, ok, err := s.Get(ctx, "k")
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "two", v)
			})

			t.Run("remove", func(t *testing.T) {
				s := setup(t)
				require.NoError(t, s.Set(ctx, "k", "v"))
				require.NoError(t, s.Remove(ctx, "k"))
				_, ok, err := s.Get(ctx, "k")
				require.NoError(t, err)
				assert.False(t, ok)
				assert.NoError(t, s.Remove(ctx, "never-set"))
			})

			t.Run("malformed values are stored verbatim", func(t *testing.T) {
				s := setup(t)
				require.NoError(t, s.Set(ctx, "k", "{not json"))
				v, _, err := s.Get(ctx, "k")
				require.NoError(t, err)
				assert.Equal(t, "{not json", v)
			})

			t.Run("update sees absence then value", func(t *testing.T) {
				s := setup(t)
				err := s.Update(ctx, "k", func(cur string, ok bool) (string, error) {
					assert.False(t, ok)
					assert.Empty(t, cur)
					return "a", nil
				})
				require.NoError(t, err)

				err = s.Update(ctx, "k", func(cur string, ok bool) (string, error) {
					assert.True(t, ok)
					return cur + "b", nil
				})
				require.NoError(t, err)

				v, _, _ := s.Get(ctx, "k")
				assert.Equal(t, "ab", v)
			})

			t.Run("update error leaves value untouched", func(t *testing.T) {
				s := setup(t)
				require.NoError(t, s.Set(ctx, "k", "keep"))
				boom := errors.New("boom")
				err := s.Update(ctx, "k", func(string, bool) (string, error) { return "", boom })
				assert.ErrorIs(t, err, boom)
				v, _, _ := s.Get(ctx, "k")
				assert.Equal(t, "keep", v)
			})

			t.Run("update error on a new key leaves it absent", func(t *testing.T) {
				s := setup(t)
				boom := errors.New("boom")
				err := s.Update(ctx, "fresh", func(cur string, ok bool) (string, error) {
					assert.False(t, ok)
					return "", boom
				})
				assert.ErrorIs(t, err, boom)
				_, ok, err := s.Get(ctx, "fresh")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("update can store an empty value", func(t *testing.T) {
				s := setup(t)
				require.NoError(t, s.Update(ctx, "k", func(string, bool) (string, error) { return "", nil }))
				err := s.Update(ctx, "k", func(cur string, ok bool) (string, error) {
					assert.True(t, ok)
					assert.Empty(t, cur)
					return "x", nil
				})
				require.NoError(t, err)
			})

			t.Run("concurrent updates do not lose writes", func(t *testing.T) {
				s := setup(t)
				const writers = 20
				var wg sync.WaitGroup
				for i := 0; i < writers; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						err := s.Update(ctx, "counter", func(cur string, ok bool) (string, error) {
							n := 0
							if ok {
								n, _ = strconv.Atoi(cur)
							}
							return strconv.Itoa(n + 1), nil
						})
						assert.NoError(t, err)
					}()
				}
				wg.Wait()
				v, _, err := s.Get(ctx, "counter")
				require.NoError(t, err)
				assert.Equal(t, strconv.Itoa(writers), v)
			})
		})
	}
}

func TestScopedIsolatesClients(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	a := Scoped(base, "a")
	b := Scoped(base, "b")

	require.NoError(t, a.Set(ctx, "elearn_user_v1", "alice"))
	_, ok, err := b.Get(ctx, "elearn_user_v1")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, _ := base.Get(ctx, ClientKey("a", "elearn_user_v1"))
	assert.True(t, ok)
	assert.Equal(t, "alice", v)
}

func TestQuota(t *testing.T) {
	ctx := context.Background()
	s := WithQuota(NewMemory(), 4)

	assert.NoError(t, s.Set(ctx, "k", "1234"))
	err := s.Set(ctx, "k", "12345")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.ErrorIs(t, err, ErrWriteFailed)

	err = s.Update(ctx, "k", func(cur string, _ bool) (string, error) { return cur + "5", nil })
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	v, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "1234", v)
}

func TestRedisUnavailable(t *testing.T) {
	ctx := context.Background()
	s, mr := setupRedis(t)
	mr.Close()

	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), ErrWriteFailed)
}

func TestOpenMemory(t *testing.T) {
	b, err := Open(&config.Config{StorageDriver: config.DriverMemory}, false)
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, b.Driver)
	assert.NoError(t, b.Ping(context.Background()))
	assert.NoError(t, b.Close())

	_, err = Open(&config.Config{StorageDriver: "mongo"}, false)
	assert.Error(t, err)
}

func TestOpenSQLiteMigrates(t *testing.T) {
	cfg := &config.Config{
		StorageDriver: config.DriverSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "open.db"),
	}
	b, err := Open(cfg, true)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	ctx := context.Background()
	require.NoError(t, b.Ping(ctx))
	require.NoError(t, b.Storage.Set(ctx, "k", "v"))
	v, ok, err := b.Storage.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
