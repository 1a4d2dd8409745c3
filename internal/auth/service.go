package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidCredentials indicates an authentication failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates a deactivated account.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrInvalidReset indicates an invalid or expired reset token.
	ErrInvalidReset = errors.New("invalid reset token")
	// ErrNotAuthenticated is the early-exit guard for missing identity.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Identity is the opaque user identity exposed after sign-in.
type Identity struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	District    string    `json:"district,omitempty"`
}

// IdentityStore provides credential lookups. Implemented by the profile
// repository.
type IdentityStore interface {
	// IdentityByEmail returns the identity, its password hash and whether
	// the account is active.
	IdentityByEmail(ctx context.Context, email string) (Identity, string, bool, error)
	IdentityByID(ctx context.Context, id uuid.UUID) (Identity, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// ErrIdentityNotFound is returned by IdentityStore lookups that miss.
var ErrIdentityNotFound = errors.New("identity not found")

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Service concentrates authentication and session rules.
type Service struct {
	store      IdentityStore
	redis      redisCommander
	jwt        *JWTManager
	refreshTTL time.Duration
	resetTTL   time.Duration
}

// NewService creates a new auth service.
func NewService(store IdentityStore, redisClient redisCommander, jwtMgr *JWTManager, refreshTTL, resetTTL time.Duration) *Service {
	return &Service{store: store, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL, resetTTL: resetTTL}
}

// JWT exposes the token manager (used by middleware).
func (s *Service) JWT() *JWTManager {
	return s.jwt
}

// Session is the standard result of a successful authentication.
type Session struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	Identity     Identity `json:"identity"`
}

// Login authenticates by email and password.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	identity, hash, active, err := s.store.IdentityByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			log.Warn().Msg("login: account not found")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := Verify(password, hash)
	if err != nil {
		log.Warn().Err(err).Msg("login: password verify failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !active {
		return nil, ErrAccountDisabled
	}

	return s.issueSession(ctx, identity)
}

// Refresh rotates a refresh token and issues a new access token.
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (*Session, error) {
	key := RefreshRedisKey(HashToken(rawRefresh))

	subject, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	identity, err := s.store.IdentityByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	// Rotation: the presented token is single-use.
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return nil, err
	}

	return s.issueSession(ctx, identity)
}

// Logout revokes a refresh token.
func (s *Service) Logout(ctx context.Context, rawRefresh string) error {
	if strings.TrimSpace(rawRefresh) == "" {
		return nil
	}
	return s.redis.Del(ctx, RefreshRedisKey(HashToken(rawRefresh))).Err()
}

// RequestPasswordReset stores a reset token for the account. The token is
// logged instead of mailed; there is no mailer in this deployment.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	identity, _, _, err := s.store.IdentityByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			// Do not reveal whether the account exists.
			return nil
		}
		return err
	}

	raw, hashed, err := GenerateToken()
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, ResetRedisKey(hashed), identity.ID.String(), s.resetTTL).Err(); err != nil {
		return err
	}

	log.Info().Str("email", identity.Email).Str("token", raw).Msg("password reset requested")
	return nil
}

// ResetPassword consumes a reset token and replaces the password hash.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	key := ResetRedisKey(HashToken(token))
	subject, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidReset
		}
		return err
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return ErrInvalidReset
	}

	hash, err := Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.store.UpdatePasswordHash(ctx, id, hash); err != nil {
		return err
	}

	return s.redis.Del(ctx, key).Err()
}

func (s *Service) issueSession(ctx context.Context, identity Identity) (*Session, error) {
	access, _, err := s.jwt.GenerateAccessToken(identity.ID.String(), identity.Role)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	if err := s.redis.Set(ctx, RefreshRedisKey(refreshHash), identity.ID.String(), s.refreshTTL).Err(); err != nil {
		return nil, err
	}

	return &Session{AccessToken: access, RefreshToken: rawRefresh, Identity: identity}, nil
}
