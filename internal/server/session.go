package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"quill/internal/cache"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionCookie   = "session"
	sessionIssuer   = "quill-web"
	sessionAudience = "quill-client"
	blacklistPrefix = "blacklist:"
)

var errInvalidSession = errors.New("invalid session")

// Session is a validated login session.
type Session struct {
	UserID    uint
	Username  string
	JTI       string
	ExpiresAt time.Time
}

// revocationList remembers logged-out token ids until they expire.
type revocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	Revoked(ctx context.Context, jti string) (bool, error)
}

type redisRevocations struct {
	client *redis.Client
}

func (r redisRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return r.client.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

func (r redisRevocations) Revoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, blacklistPrefix+jti).Result()
	return n > 0, err
}

// memoryRevocations backs logout when Redis is not configured.
type memoryRevocations struct {
	store *cache.MemoryStore
}

func (m memoryRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return m.store.Set(ctx, blacklistPrefix+jti, []byte("1"), ttl)
}

func (m memoryRevocations) Revoked(ctx context.Context, jti string) (bool, error) {
	_, ok, err := m.store.Get(ctx, blacklistPrefix+jti)
	return ok, err
}

// SessionManager issues and validates the HS256 session cookie.
type SessionManager struct {
	secret  []byte
	ttl     time.Duration
	revoked revocationList
	now     func() time.Time
}

// NewSessionManager returns a manager that blacklists revoked tokens in
// Redis when redisClient is non-nil and in process memory otherwise.
func NewSessionManager(secret string, ttl time.Duration, redisClient *redis.Client) *SessionManager {
	var revoked revocationList = memoryRevocations{store: cache.NewMemoryStore()}
	if redisClient != nil {
		revoked = redisRevocations{client: redisClient}
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, revoked: revoked, now: time.Now}
}

// Issue signs a new session token for the user.
func (m *SessionManager) Issue(userID uint, username string) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("JWT secret not configured")
	}

	now := m.now()
	expires := now.Add(m.ttl)
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      sessionIssuer,
		"aud":      sessionAudience,
		"exp":      expires.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse validates the token and its revocation status.
func (m *SessionManager) Parse(ctx context.Context, raw string) (*Session, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidSession
		}
		return m.secret, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithAudience(sessionAudience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, errInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidSession
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, errInvalidSession
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, errInvalidSession
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, errInvalidSession
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errInvalidSession
	}

	revoked, err := m.revoked.Revoked(ctx, jti)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errInvalidSession
	}

	username, _ := claims["username"].(string)
	return &Session{UserID: uint(userID), Username: username, JTI: jti, ExpiresAt: exp.Time}, nil
}

// Revoke blacklists the session for the rest of its lifetime.
func (m *SessionManager) Revoke(ctx context.Context, session *Session) error {
	ttl := session.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.revoked.Revoke(ctx, session.JTI, ttl)
}
