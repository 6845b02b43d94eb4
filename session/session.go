package session

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/utils"
)

var (
	ErrNotAdmin        = errors.New("only admin accounts can sign in")
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrNoUpstreamToken = errors.New("backend returned no token")
	ErrUpstreamExpired = errors.New("backend token already expired")
)

// Session is what the gateway keeps about a signed-in admin. The raw
// gateway token is never stored; ID is derived from it.
type Session struct {
	ID            string    `json:"-"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	UpstreamToken string    `json:"upstreamToken"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Authenticator is the backend login call.
type Authenticator interface {
	Login(ctx context.Context, input models.LoginInput) (*models.LoginInfo, error)
}

type Manager struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewManager(rdb *redis.Client, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = config.SessionTTL()
	}
	return &Manager{rdb: rdb, ttl: ttl, now: time.Now}
}

// keyFor hashes a gateway token into its session id.
func keyFor(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func redisKey(id string) string {
	return "Session:" + id
}

// Login signs in against the backend and opens a gateway session. It
// expires with the backend token or after the configured ttl, whichever is
// first.
func (m *Manager) Login(ctx context.Context, auth Authenticator, input models.LoginInput) (string, *Session, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return "", nil, err
	}

	info, err := auth.Login(ctx, input)
	if err != nil {
		return "", nil, err
	}
	if !info.User.IsAdmin() {
		return "", nil, ErrNotAdmin
	}
	if info.Token == "" {
		return "", nil, ErrNoUpstreamToken
	}

	now := m.now()
	expiresAt := utils.SessionExpiry(info.Token, now, m.ttl)
	lifespan := expiresAt.Sub(now)
	if lifespan <= 0 {
		return "", nil, ErrUpstreamExpired
	}

	token := uuid.NewString()
	sess := &Session{
		ID:            keyFor(token),
		Email:         input.Email,
		Role:          info.User.Role,
		UpstreamToken: info.Token,
		ExpiresAt:     expiresAt,
	}
	if info.User.Email != "" {
		sess.Email = info.User.Email
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return "", nil, err
	}
	if err := m.rdb.Set(ctx, redisKey(sess.ID), raw, lifespan).Err(); err != nil {
		config.LogError(config.GetLogger(), "Session", "Login", "store session", sess.Email, err)
		return "", nil, err
	}
	return token, sess, nil
}

// Get returns the live session for a gateway token.
func (m *Manager) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	id := keyFor(token)
	raw, err := m.rdb.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if config.IsRedisNil(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	if !sess.ExpiresAt.After(m.now()) {
		m.DestroyByID(ctx, id)
		return nil, ErrSessionNotFound
	}
	sess.ID = id
	return &sess, nil
}

// Destroy ends the session of a gateway token (logout).
func (m *Manager) Destroy(ctx context.Context, token string) error {
	return m.DestroyByID(ctx, keyFor(token))
}

// DestroyByID ends a session by id, used when the backend rejects the
// session's upstream token.
func (m *Manager) DestroyByID(ctx context.Context, id string) error {
	return m.rdb.Del(ctx, redisKey(id)).Err()
}
