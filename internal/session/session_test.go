// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
	"github.com/taibuivan/yomira-harvester/internal/session"
)

type fakeAuthenticator struct {
	tokens []string
	err    error
	calls  int
}

func (f *fakeAuthenticator) SignIn(context.Context, string, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	token := f.tokens[0]
	if len(f.tokens) > 1 {
		f.tokens = f.tokens[1:]
	}
	return token, nil
}

type memoryStore struct {
	token string
	saves int
}

func (m *memoryStore) Load(context.Context) (string, error) { return m.token, nil }

func (m *memoryStore) Save(_ context.Context, token string) error {
	m.token = token
	m.saves++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}).SignedString([]byte("remote-secret"))
	require.NoError(t, err)
	return token
}

/*
TestToken_SignsInWhenNothingPersisted verifies the first run signs in and persists.
*/
func TestToken_SignsInWhenNothingPersisted(t *testing.T) {
	auth := &fakeAuthenticator{tokens: []string{"opaque-token-1"}}
	store := &memoryStore{}
	service := session.NewService(auth, store, "reader@example.com", "secret", nil, discardLogger())

	token, err := service.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "opaque-token-1", token)
	assert.Equal(t, "opaque-token-1", store.token)

	// Memory hit: no further sign-in.
	_, err = service.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, auth.calls)
}

/*
TestToken_ReusesPersistedToken covers restarts with a stored credential.
*/
func TestToken_ReusesPersistedToken(t *testing.T) {
	tests := []struct {
		name        string
		persisted   func(t *testing.T) string
		wantSignIns int
	}{
		{"opaque", func(*testing.T) string { return "opaque-token" }, 0},
		{"valid_jwt", func(t *testing.T) string { return signedToken(t, time.Now().Add(24*time.Hour)) }, 0},
		{"expired_jwt", func(t *testing.T) string { return signedToken(t, time.Now().Add(-time.Hour)) }, 1},
		{"nearly_expired_jwt", func(t *testing.T) string { return signedToken(t, time.Now().Add(10*time.Second)) }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuthenticator{tokens: []string{"fresh-token"}}
			store := &memoryStore{token: tt.persisted(t)}
			service := session.NewService(auth, store, "reader@example.com", "secret", nil, discardLogger())

			_, err := service.Token(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantSignIns, auth.calls)
		})
	}
}

/*
TestRefresh_AlwaysSignsIn verifies refresh replaces the cached and stored token.
*/
func TestRefresh_AlwaysSignsIn(t *testing.T) {
	auth := &fakeAuthenticator{tokens: []string{"first", "second"}}
	store := &memoryStore{}
	service := session.NewService(auth, store, "reader@example.com", "secret", nil, discardLogger())

	_, err := service.Token(context.Background())
	require.NoError(t, err)

	token, err := service.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", token)
	assert.Equal(t, "second", store.token)
	assert.Equal(t, 2, store.saves)
}

/*
TestRefresh_FailureIsFatal verifies a rejected sign-in stops the process.
*/
func TestRefresh_FailureIsFatal(t *testing.T) {
	auth := &fakeAuthenticator{err: errors.New("invalid email or password")}
	service := session.NewService(auth, &memoryStore{}, "reader@example.com", "wrong", nil, discardLogger())

	_, err := service.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsFatal(err))
	assert.Equal(t, "AUTH_FAILED", apperr.As(err).Code)
}

/*
TestExpiresAt reads exp from JWTs and ignores opaque tokens.
*/
func TestExpiresAt(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	got, ok := session.ExpiresAt(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = session.ExpiresAt("not-a-jwt")
	assert.False(t, ok)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "eyJhbGciOi*****", session.Mask("eyJhbGciOiJIUzI1NiJ9.payload.sig"))
	assert.Equal(t, "*****", session.Mask("short"))
}

/*
TestFileTokenStore verifies the on-disk token file.
*/
func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".token")
	store := session.NewFileTokenStore(path)

	token, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save(context.Background(), "persisted-token"))

	token, err = store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "persisted-token", token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

/*
TestRedisTokenStore runs against a real server when HARVESTER_TEST_REDIS_URL is set.
*/
func TestRedisTokenStore(t *testing.T) {
	redisURL := os.Getenv("HARVESTER_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("HARVESTER_TEST_REDIS_URL not set")
	}

	options, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(options)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := session.NewRedisTokenStore(client)
	require.NoError(t, client.Del(ctx, "harvest:session:token").Err())

	token, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save(ctx, "redis-token"))
	token, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "redis-token", token)
}
