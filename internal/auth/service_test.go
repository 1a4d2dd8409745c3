package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	m map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{m: map[string]string{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.m[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.m[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := f.m[key]; ok {
			delete(f.m, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

type fakeIdentityStore struct {
	identity Identity
	hash     string
	active   bool
}

func (s *fakeIdentityStore) IdentityByEmail(_ context.Context, email string) (Identity, string, bool, error) {
	if email != s.identity.Email {
		return Identity{}, "", false, ErrIdentityNotFound
	}
	return s.identity, s.hash, s.active, nil
}

func (s *fakeIdentityStore) IdentityByID(_ context.Context, id uuid.UUID) (Identity, error) {
	if id != s.identity.ID {
		return Identity{}, ErrIdentityNotFound
	}
	return s.identity, nil
}

func (s *fakeIdentityStore) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	if id != s.identity.ID {
		return ErrIdentityNotFound
	}
	s.hash = hash
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeIdentityStore, *fakeRedis) {
	t.Helper()

	hash, err := Hash("s3cret-pass")
	require.NoError(t, err)

	store := &fakeIdentityStore{
		identity: Identity{
			ID:          uuid.New(),
			DisplayName: "Thandi Nkosi",
			Email:       "thandi@example.org",
			Role:        "Health Promoter",
			District:    "uMgungundlovu",
		},
		hash:   hash,
		active: true,
	}
	rdb := newFakeRedis()
	mgr := NewJWTManager(testSecret, time.Minute)
	return NewService(store, rdb, mgr, time.Hour, time.Hour), store, rdb
}

func TestLoginIssuesSession(t *testing.T) {
	svc, store, _ := newTestService(t)

	session, err := svc.Login(context.Background(), "Thandi@Example.org", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, store.identity, session.Identity)

	claims, err := svc.JWT().ParseAndValidate(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, store.identity.ID.String(), claims.Subject)
	assert.Equal(t, "Health Promoter", claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "thandi@example.org", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.active = false

	_, err := svc.Login(context.Background(), "thandi@example.org", "s3cret-pass")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	session, err := svc.Login(context.Background(), "thandi@example.org", "s3cret-pass")
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// The presented token is single-use.
	_, err = svc.Refresh(context.Background(), session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestLogoutRevokesRefresh(t *testing.T) {
	svc, _, _ := newTestService(t)

	session, err := svc.Login(context.Background(), "thandi@example.org", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), session.RefreshToken))

	_, err = svc.Refresh(context.Background(), session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, store, rdb := newTestService(t)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "thandi@example.org"))

	// Recover the raw token the way the operator would: a single reset key
	// exists; re-derive its stored subject to confirm, then reset with a
	// token we plant ourselves.
	raw, hashed, err := GenerateToken()
	require.NoError(t, err)
	rdb.m[ResetRedisKey(hashed)] = store.identity.ID.String()

	require.NoError(t, svc.ResetPassword(context.Background(), raw, "brand-new-pass"))

	ok, err := Verify("brand-new-pass", store.hash)
	require.NoError(t, err)
	assert.True(t, ok)

	// Token is consumed.
	err = svc.ResetPassword(context.Background(), raw, "another-pass")
	assert.ErrorIs(t, err, ErrInvalidReset)
}

func TestRequestResetUnknownAccountIsSilent(t *testing.T) {
	svc, _, rdb := newTestService(t)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@example.org"))
	assert.Empty(t, rdb.m)
}
