package auth

import (
	"context"
	"errors"
	"time"

	"github.com/franciscosanchezn/calassist-api/internal/models"
	"github.com/franciscosanchezn/calassist-api/internal/services"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

var log = logrus.StandardLogger()

// TokenRefresher performs the refresh_token grant
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// TokenManager hands out currently valid Google access tokens, refreshing and
// persisting them when the stored one has expired.
type TokenManager struct {
	credentials services.CredentialService
	refresher   TokenRefresher
	locker      Locker
	skew        time.Duration
	timeout     time.Duration
	now         func() time.Time
	flight      singleflight.Group
}

// NewTokenManager creates a token manager. Tokens expiring within skew are
// refreshed early. A shared refresh is bounded by timeout (zero means no
// bound). locker may be nil when only one process serves requests.
func NewTokenManager(credentials services.CredentialService, refresher TokenRefresher, skew, timeout time.Duration, locker Locker) *TokenManager {
	return &TokenManager{
		credentials: credentials,
		refresher:   refresher,
		locker:      locker,
		skew:        skew,
		timeout:     timeout,
		now:         time.Now,
	}
}

// GetValidAccessToken returns the user's access token, refreshing it first if it
// has expired. Errors match one of the models.Err* failure classes.
func (m *TokenManager) GetValidAccessToken(ctx context.Context, userID string) (string, error) {
	token, err := m.load(ctx, "get_access_token", userID)
	if err != nil {
		return "", err
	}

	if !token.IsExpired(m.now(), m.skew) {
		return token.AccessToken, nil
	}

	// Concurrent callers for the same user share one refresh. It outlives any
	// single caller, so each caller only waits on its own context.
	results := m.flight.DoChan(userID, func() (interface{}, error) {
		refreshCtx, cancel := m.refreshContext(ctx)
		defer cancel()
		return m.refresh(refreshCtx, userID)
	})

	select {
	case res := <-results:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		log.WithField("user_id", userID).WithError(ctx.Err()).Debug("Caller gave up waiting for token refresh")
		return "", models.NewIntegrationError("refresh", models.ErrTransientProvider, ctx.Err())
	}
}

// refreshContext keeps the caller's values but not its cancellation
func (m *TokenManager) refreshContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if m.timeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, m.timeout)
}

func (m *TokenManager) refresh(ctx context.Context, userID string) (string, error) {
	const op = "refresh"
	logger := log.WithField("user_id", userID)

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, "google-token-refresh:"+userID)
		if err != nil {
			logger.WithError(err).Error("Failed to acquire refresh lock")
			return "", models.NewIntegrationError(op, models.ErrPersistence, err)
		}
		defer unlock()
	}

	// Another process may have refreshed while we waited for the lock.
	token, err := m.load(ctx, op, userID)
	if err != nil {
		return "", err
	}
	if !token.IsExpired(m.now(), m.skew) {
		logger.Debug("Token already refreshed by another holder")
		return token.AccessToken, nil
	}

	if token.RefreshToken == "" {
		logger.Warn("Stored credential has no refresh token")
		return "", models.NewIntegrationError(op, models.ErrPermanentAuth, errors.New("no refresh token stored"))
	}

	refreshed, err := m.refresher.Refresh(ctx, token.RefreshToken)
	if err != nil {
		logger.WithError(err).Error("Google token refresh failed")
		return "", err
	}

	grant := GrantFromToken(refreshed, m.now())

	swapped, err := m.credentials.CompareAndSwapAccessToken(ctx, userID, token.AccessToken, grant)
	if err != nil {
		logger.WithError(err).Error("Failed to persist refreshed token")
		return "", models.NewIntegrationError(op, models.ErrPersistence, err)
	}
	if !swapped {
		// The row changed underneath us: a reconnect, a disconnect, or a refresh
		// from a process without the shared lock.
		current, err := m.load(ctx, op, userID)
		if err != nil {
			return "", err
		}
		logger.Warn("Credential changed during refresh, keeping the stored version")
		if !current.IsExpired(m.now(), m.skew) {
			return current.AccessToken, nil
		}
	}

	logger.WithField("expiry_date", grant.ExpiryDate).Info("Google access token refreshed")
	return grant.AccessToken, nil
}

// IsConnected reports whether the user has a stored credential
func (m *TokenManager) IsConnected(ctx context.Context, userID string) (bool, error) {
	ok, err := m.credentials.Exists(ctx, userID)
	if err != nil {
		log.WithField("user_id", userID).WithError(err).Error("Failed to check Google Calendar connection")
		return false, models.NewIntegrationError("status", models.ErrPersistence, err)
	}
	return ok, nil
}

// Disconnect deletes the user's stored credential. Disconnecting a user who
// never connected succeeds.
func (m *TokenManager) Disconnect(ctx context.Context, userID string) error {
	if err := m.credentials.Delete(ctx, userID); err != nil {
		log.WithField("user_id", userID).WithError(err).Error("Failed to disconnect Google Calendar")
		return models.NewIntegrationError("disconnect", models.ErrPersistence, err)
	}
	log.WithField("user_id", userID).Info("Google Calendar disconnected")
	return nil
}

// GrantFromToken converts a token endpoint response into the stored form. A
// response without expires_in is stored as already expired.
func GrantFromToken(token *oauth2.Token, now time.Time) services.TokenGrant {
	grant := services.TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiryDate:   token.Expiry,
	}
	if scope, ok := token.Extra("scope").(string); ok {
		grant.Scopes = scope
	}
	if grant.ExpiryDate.IsZero() {
		grant.ExpiryDate = now
	}
	return grant
}

func (m *TokenManager) load(ctx context.Context, op, userID string) (*models.GoogleAuthToken, error) {
	token, err := m.credentials.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, services.ErrCredentialNotFound) {
			log.WithField("user_id", userID).Debug("No Google auth token found for user")
			return nil, models.NewIntegrationError(op, models.ErrNotConnected, nil)
		}
		log.WithField("user_id", userID).WithError(err).Error("Failed to load Google auth token")
		return nil, models.NewIntegrationError(op, models.ErrPersistence, err)
	}
	return token, nil
}
