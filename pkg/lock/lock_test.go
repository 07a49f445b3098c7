package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (m *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryStore) LockKey(parts ...string) string {
	return "test:lock:" + strings.Join(parts, ":")
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newMemoryStore()
	first, err := NewRedisLock(store, "cron", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "cron", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	// a non-owner release must not drop someone else's lock
	require.NoError(t, second.Release(context.Background()))
	_, err = store.Get(context.Background(), "cron")
	require.NoError(t, err)

	require.NoError(t, first.Release(context.Background()))
	ok, err = second.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRedisLockValidates(t *testing.T) {
	_, err := NewRedisLock(nil, "k", 0)
	require.Error(t, err)
	_, err = NewRedisLock(newMemoryStore(), "", 0)
	require.Error(t, err)
}

func TestScopeLockerWaitsForRelease(t *testing.T) {
	store := newMemoryStore()
	locker, err := NewScopeLocker(ScopeLockerParams{Store: store, Keys: store, TTL: time.Second, RetryDelay: time.Millisecond})
	require.NoError(t, err)

	release, err := locker.Lock(context.Background(), "ordering", "services", "global")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		unlock, err := locker.Lock(context.Background(), "ordering", "services", "global")
		if err == nil {
			close(acquired)
			_ = unlock(context.Background())
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second caller acquired a held scope")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, release(context.Background()))
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second caller never acquired the released scope")
	}
}

func TestScopeLockerTimesOut(t *testing.T) {
	store := newMemoryStore()
	locker, err := NewScopeLocker(ScopeLockerParams{Store: store, Keys: store, TTL: time.Second, Wait: 10 * time.Millisecond, RetryDelay: time.Millisecond})
	require.NoError(t, err)

	_, err = locker.Lock(context.Background(), "busy")
	require.NoError(t, err)

	_, err = locker.Lock(context.Background(), "busy")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLockTimeout))
}
