package token

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/AntonTsoy/book-catalog/internal/apperror"
	"github.com/AntonTsoy/book-catalog/internal/cache"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{
		Issuer:        "referanslar.github.io",
		AccessSecret:  "access-secret",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    24 * time.Hour,
		StoreTTL:      86400 * time.Second,
	}
}

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc, err := NewService(testConfig(), cache.NewStore(rdb, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	return svc, mr
}

func requireStatus(t *testing.T, err error, status int, message string) {
	t.Helper()
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *apperror.Error, got %T: %v", err, err)
	assert.Equal(t, status, appErr.Status)
	assert.Equal(t, message, appErr.Message)
}

type failingStore struct{ err error }

func (f failingStore) Set(context.Context, string, string, time.Duration) error { return f.err }
func (f failingStore) Get(context.Context, string) (string, bool, error)        { return "", false, f.err }
func (f failingStore) Del(context.Context, string) error                        { return f.err }

func TestNewService_Misconfigured(t *testing.T) {
	cfg := testConfig()
	cfg.AccessSecret = ""
	_, err := NewService(cfg, failingStore{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingSecret)

	cfg = testConfig()
	cfg.RefreshTTL = 0
	_, err = NewService(cfg, failingStore{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	for _, userID := range []string{"1", "user-42", "7f6c0e42-0f0e-4f6b-9d7c-6a1b0c1e2d3f"} {
		tok, err := svc.CreateAccessToken(ctx, userID)
		require.NoError(t, err)

		claims, err := svc.VerifyAccessToken(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.Audience)
	}

	assert.Empty(t, mr.Keys(), "access tokens must not touch the store")
}

func TestAccessToken_EmptyUserID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateAccessToken(context.Background(), "")
	requireStatus(t, err, http.StatusInternalServerError, "Unable to create access token.")
	assert.ErrorIs(t, err, ErrTokenCreation)
}

func TestVerifyAccessToken_RejectsEverythingAsUnauthorized(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	refresh, err := svc.CreateRefreshToken(ctx, "user-1")
	require.NoError(t, err)

	forged, err := newTestCodec(t, "attacker-secret", time.Minute).Sign("user-1")
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"wrong secret":  forged,
		"refresh token": refresh,
		"garbage":       "not.a.jwt",
		"empty":         "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.VerifyAccessToken(ctx, tok)
			requireStatus(t, err, http.StatusUnauthorized, "Please sign in again.")
		})
	}
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	svc, _ := newTestService(t)
	past := time.Now().Add(-time.Hour)
	svc.access.now = func() time.Time { return past }

	tok, err := svc.CreateAccessToken(context.Background(), "user-1")
	require.NoError(t, err)

	svc.access.now = time.Now
	_, err = svc.VerifyAccessToken(context.Background(), tok)
	requireStatus(t, err, http.StatusUnauthorized, "Please sign in again.")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestRefreshToken_StoredUnderUserID(t *testing.T) {
	svc, mr := newTestService(t)

	tok, err := svc.CreateRefreshToken(context.Background(), "user-1")
	require.NoError(t, err)

	stored, err := mr.Get("user-1")
	require.NoError(t, err)
	assert.Equal(t, tok, stored)
	assert.Equal(t, 86400*time.Second, mr.TTL("user-1"))
}

func TestRefreshToken_StoreTTLIsIndependentOfClaimExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	cfg.RefreshTTL = 7 * 24 * time.Hour
	cfg.StoreTTL = 0
	svc, err := NewService(cfg, cache.NewStore(rdb, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)

	_, err = svc.CreateRefreshToken(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 86400*time.Second, mr.TTL("user-1"))
}

func TestRefreshToken_VerifyThenRotate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateRefreshToken(ctx, "user-1")
	require.NoError(t, err)

	userID, err := svc.VerifyRefreshToken(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	second, err := svc.CreateRefreshToken(ctx, "user-1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = svc.VerifyRefreshToken(ctx, first)
	requireStatus(t, err, http.StatusUnauthorized, "Please sign in again.")

	userID, err = svc.VerifyRefreshToken(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestRefreshToken_SessionsArePerUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	alice, err := svc.CreateRefreshToken(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.CreateRefreshToken(ctx, "bob")
	require.NoError(t, err)

	userID, err := svc.VerifyRefreshToken(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)
}

func TestRefreshToken_DeleteRevokes(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	tok, err := svc.CreateRefreshToken(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRefreshToken(ctx, "user-1"))
	assert.False(t, mr.Exists("user-1"))

	_, err = svc.VerifyRefreshToken(ctx, tok)
	requireStatus(t, err, http.StatusUnauthorized, "Please sign in again.")
}

func TestRefreshToken_StoreExpiryRevokes(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	tok, err := svc.CreateRefreshToken(ctx, "user-1")
	require.NoError(t, err)

	mr.FastForward(86401 * time.Second)

	_, err = svc.VerifyRefreshToken(ctx, tok)
	requireStatus(t, err, http.StatusUnauthorized, "Please sign in again.")
}

func TestVerifyRefreshToken_RejectsAccessToken(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	access, err := svc.CreateAccessToken(ctx, "user-1")
	require.NoError(t, err)
	// even if the store happened to hold it, the refresh secret must reject it
	require.NoError(t, mr.Set("user-1", access))

	_, err = svc.VerifyRefreshToken(ctx, access)
	requireStatus(t, err, http.StatusUnauthorized, "Please sign in again.")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestStoreFailures(t *testing.T) {
	storeErr := errors.New("cache: store unavailable")
	svc, err := NewService(testConfig(), failingStore{err: storeErr}, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.CreateRefreshToken(ctx, "user-1")
	requireStatus(t, err, http.StatusInternalServerError, "Unable to create refresh token.")
	assert.ErrorIs(t, err, ErrTokenCreation)
	assert.ErrorIs(t, err, storeErr)

	err = svc.DeleteRefreshToken(ctx, "user-1")
	requireStatus(t, err, http.StatusInternalServerError, "Unable to delete refresh token.")
	assert.ErrorIs(t, err, ErrTokenCreation)

	tok, err := svc.refresh.Sign("user-1")
	require.NoError(t, err)
	_, err = svc.VerifyRefreshToken(ctx, tok)
	requireStatus(t, err, http.StatusInternalServerError, "Unable to verify refresh token.")

	// the access path has no store dependency
	access, err := svc.CreateAccessToken(ctx, "user-1")
	require.NoError(t, err)
	_, err = svc.VerifyAccessToken(ctx, access)
	require.NoError(t, err)
}

func TestRefreshToken_RedisDown(t *testing.T) {
	svc, mr := newTestService(t)
	mr.Close()

	_, err := svc.CreateRefreshToken(context.Background(), "user-1")
	requireStatus(t, err, http.StatusInternalServerError, "Unable to create refresh token.")
	assert.ErrorIs(t, err, cache.ErrUnavailable)
}
