package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	defaultScopeTTL   = 10 * time.Second
	defaultRetryDelay = 25 * time.Millisecond
)

// ErrLockTimeout is returned when a scope stays locked for longer than the wait budget.
var ErrLockTimeout = errors.New("lock wait timed out")

type keyBuilder interface {
	LockKey(parts ...string) string
}

// ScopeLocker serializes short critical sections across processes by blocking
// until a RedisLock for the given name can be acquired.
type ScopeLocker struct {
	store Store
	keys  keyBuilder
	ttl   time.Duration
	wait  time.Duration
	retry time.Duration
}

// ScopeLockerParams configures a ScopeLocker. Wait defaults to TTL.
type ScopeLockerParams struct {
	Store      Store
	Keys       keyBuilder
	TTL        time.Duration
	Wait       time.Duration
	RetryDelay time.Duration
}

// NewScopeLocker builds a blocking locker backed by Redis.
func NewScopeLocker(params ScopeLockerParams) (*ScopeLocker, error) {
	if params.Store == nil {
		return nil, errors.New("lock store required")
	}
	if params.Keys == nil {
		return nil, errors.New("lock key builder required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultScopeTTL
	}
	wait := params.Wait
	if wait <= 0 {
		wait = ttl
	}
	retry := params.RetryDelay
	if retry <= 0 {
		retry = defaultRetryDelay
	}
	return &ScopeLocker{
		store: params.Store,
		keys:  params.Keys,
		ttl:   ttl,
		wait:  wait,
		retry: retry,
	}, nil
}

// Lock blocks until the named scope is owned by the caller and returns the release func.
func (s *ScopeLocker) Lock(ctx context.Context, name ...string) (func(context.Context) error, error) {
	l, err := NewRedisLock(s.store, s.keys.LockKey(name...), s.ttl)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(s.wait)
	for {
		ok, err := l.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			return l.Release, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, name)
		}

		timer := time.NewTimer(s.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
