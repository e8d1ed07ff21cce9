// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session owns the remote catalog credential.

The [Service] implements [catalog.Credentials]: the catalog client asks it for
a token and, when the remote rejects one, asks it to refresh. The service
persists every new token through a [TokenStore] so a restart does not force a
new sign-in.

Lifecycle:

	Token:   memory -> store (unless its JWT exp has passed) -> sign in
	Refresh: sign in -> persist -> memory

A failed sign-in is fatal for the process and is returned as [apperr.AuthFailed].
*/
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
	"github.com/taibuivan/yomira-harvester/internal/platform/metrics"
)

// expirySkew treats tokens about to expire as already expired.
const expirySkew = time.Minute

// TokenStore persists the session token between process runs.
type TokenStore interface {
	// Load returns the persisted token, or "" when none exists.
	Load(ctx context.Context) (string, error)
	// Save replaces the persisted token.
	Save(ctx context.Context, token string) error
}

// Authenticator exchanges account credentials for a token.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (string, error)
}

// Service hands out the current credential and refreshes it on demand.
// It is safe for concurrent use.
type Service struct {
	mu            sync.Mutex
	token         string
	authenticator Authenticator
	store         TokenStore
	email         string
	password      string
	now           func() time.Time
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewService builds a credential service for one account.
func NewService(authenticator Authenticator, store TokenStore, email, password string, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		authenticator: authenticator,
		store:         store,
		email:         email,
		password:      password,
		now:           time.Now,
		metrics:       m,
		logger:        logger,
	}
}

// Token returns a usable credential, signing in only when neither memory nor
// the store holds an unexpired one.
func (service *Service) Token(ctx context.Context) (string, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	if service.token != "" && !service.expired(service.token) {
		return service.token, nil
	}

	persisted, err := service.store.Load(ctx)
	if err != nil {
		// Fall back to signing in.
		service.logger.Warn("session_token_load_failed", slog.Any("error", err))
	}

	if persisted != "" && !service.expired(persisted) {
		service.token = persisted
		service.logger.Debug("session_token_restored", slog.String("token", Mask(persisted)))
		return persisted, nil
	}

	return service.signIn(ctx)
}

// Refresh discards the current credential and signs in again.
func (service *Service) Refresh(ctx context.Context) (string, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	service.token = ""
	return service.signIn(ctx)
}

// signIn must be called with mu held.
func (service *Service) signIn(ctx context.Context) (string, error) {
	service.logger.Info("session_sign_in", slog.String("email", service.email))

	token, err := service.authenticator.SignIn(ctx, service.email, service.password)
	if err != nil {
		service.metrics.IncRefresh(false)
		return "", apperr.AuthFailed(err)
	}
	service.metrics.IncRefresh(true)

	if err := service.store.Save(ctx, token); err != nil {
		service.logger.Error("session_token_save_failed", slog.Any("error", err))
	}

	service.token = token
	service.logger.Info("session_signed_in", slog.String("token", Mask(token)))

	return token, nil
}

// expired reports whether token carries an exp claim that has passed.
// Opaque tokens are never considered expired; the remote will reject them.
func (service *Service) expired(token string) bool {
	expiresAt, ok := ExpiresAt(token)
	if !ok {
		return false
	}
	return !service.now().Add(expirySkew).Before(expiresAt)
}

// ExpiresAt reads the exp claim of a JWT without verifying its signature.
func ExpiresAt(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Mask shortens a token for logging.
func Mask(token string) string {
	const visible = 10
	if len(token) <= visible {
		return "*****"
	}
	return token[:visible] + "*****"
}
