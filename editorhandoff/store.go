package editorhandoff

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/utils"
)

// Store keeps one State per admin session. Update runs fn under a
// per-session lock and persists the result when fn succeeds. A stale token
// error is persisted too, since fn has already dropped the stale edit.
type Store interface {
	Get(ctx context.Context, session string) (*State, error)
	Update(ctx context.Context, session string, fn func(*State) error) (*State, error)
	Delete(ctx context.Context, session string) error
}

func stateKey(session string) string {
	return "Handoff:" + session
}

func lockKey(session string) string {
	return "lock:handoff:" + session
}

func keepsState(err error) bool {
	return errors.Is(err, ErrStaleToken)
}

func decodeState(raw []byte) (*State, error) {
	var st State
	if err := utils.UnmarshalFromJSON(raw, &st); err != nil {
		return nil, err
	}
	if st.Phase == "" {
		st.Phase = PhaseIdle
	}
	return &st, nil
}

// RedisStore keeps the state as JSON under Handoff:<session>.
type RedisStore struct {
	rdb     *redis.Client
	locker  *redislock.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewRedisStore(rdb *redis.Client, locker *redislock.Client, ttl time.Duration) *RedisStore {
	if locker == nil {
		locker = redislock.New(rdb)
	}
	return &RedisStore{rdb: rdb, locker: locker, ttl: ttl, lockTTL: 10 * time.Second}
}

func (r *RedisStore) Get(ctx context.Context, session string) (*State, error) {
	raw, err := r.rdb.Get(ctx, stateKey(session)).Bytes()
	if err != nil {
		if config.IsRedisNil(err) {
			return NewState(), nil
		}
		return nil, err
	}
	return decodeState(raw)
}

func (r *RedisStore) Update(ctx context.Context, session string, fn func(*State) error) (*State, error) {
	lock, err := r.locker.Obtain(ctx, lockKey(session), r.lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 60),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrSessionBusy
		}
		return nil, err
	}
	defer func() {
		if releaseErr := lock.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			config.LogError(config.GetLogger(), "EditorHandoff", "Update", "release lock", session, releaseErr)
		}
	}()

	st, err := r.Get(ctx, session)
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go r.keepAlive(ctx, lock, session, done)
	fnErr := fn(st)
	close(done)
	if fnErr != nil && !keepsState(fnErr) {
		return nil, fnErr
	}
	// fn may outlive a lease; once another request holds the lock our copy is stale.
	if err := lock.Refresh(ctx, r.lockTTL, nil); err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			config.LogError(config.GetLogger(), "EditorHandoff", "Update", "lock lost before write", session, err)
			return nil, ErrSessionBusy
		}
		return nil, err
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	if err := r.rdb.Set(ctx, stateKey(session), raw, r.ttl).Err(); err != nil {
		return nil, err
	}
	return st, fnErr
}

// keepAlive extends the lock every half lease until done is closed.
func (r *RedisStore) keepAlive(ctx context.Context, lock *redislock.Lock, session string, done <-chan struct{}) {
	ticker := time.NewTicker(r.lockTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := lock.Refresh(ctx, r.lockTTL, nil); err != nil {
				config.LogError(config.GetLogger(), "EditorHandoff", "Update", "refresh lock", session, err)
				return
			}
		}
	}
}

func (r *RedisStore) Delete(ctx context.Context, session string) error {
	return r.rdb.Del(ctx, stateKey(session)).Err()
}

// MemoryStore is the in-process Store used in development and tests.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, session string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(session)
}

func (m *MemoryStore) get(session string) (*State, error) {
	raw, ok := m.states[session]
	if !ok {
		return NewState(), nil
	}
	return decodeState(raw)
}

func (m *MemoryStore) Update(ctx context.Context, session string, fn func(*State) error) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, err := m.get(session)
	if err != nil {
		return nil, err
	}
	fnErr := fn(st)
	if fnErr != nil && !keepsState(fnErr) {
		return nil, fnErr
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	m.states[session] = raw
	return st, fnErr
}

func (m *MemoryStore) Delete(ctx context.Context, session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, session)
	return nil
}
