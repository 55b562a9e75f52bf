package usecase

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/guestgate/guestgate/application/port/inbound"
	"github.com/guestgate/guestgate/application/port/outbound"
	domainerr "github.com/guestgate/guestgate/domain/error"
	"github.com/guestgate/guestgate/domain/entity"
	"github.com/guestgate/guestgate/infrastructure/service/logger"
)

// CredentialRefresher owns the process-wide platform credential. It is the
// only writer; handlers read through Current and AccessToken.
type CredentialRefresher struct {
	tokens outbound.TokenRefresher
	clock  clockwork.Clock
	logger logger.Logger

	single singleflight.Group

	mu   sync.RWMutex // protects cred
	cred entity.Credential
}

var _ inbound.CredentialService = (*CredentialRefresher)(nil)

func NewCredentialRefresher(tokens outbound.TokenRefresher, refreshToken string, clock clockwork.Clock, log logger.Logger) *CredentialRefresher {
	return &CredentialRefresher{
		tokens: tokens,
		clock:  clock,
		logger: log.WithFields(map[string]interface{}{"component": "credential_refresher"}),
		cred:   entity.NewCredential(refreshToken),
	}
}

// Refresh exchanges the current refresh token for a new pair. Concurrent
// callers share a single exchange so a rotated refresh token is never spent
// twice. On failure the credential is left as it was.
func (r *CredentialRefresher) Refresh(ctx context.Context) error {
	_, err, shared := r.single.Do("refresh", func() (interface{}, error) {
		return nil, r.refresh(ctx)
	})
	if shared {
		r.logger.Debug(ctx, "Joined in-flight token refresh", nil)
	}
	return err
}

func (r *CredentialRefresher) refresh(ctx context.Context) error {
	start := r.clock.Now()
	current := r.Current()

	pair, err := r.tokens.Refresh(ctx, current.RefreshToken)
	if err != nil {
		r.logger.Error(ctx, "Error refreshing the access token", err, map[string]interface{}{
			"state": current.State(),
		})
		return domainerr.ErrRefreshFailed(err)
	}
	if pair == nil || pair.AccessToken == "" {
		err := domainerr.ErrRefreshMalformed("token endpoint returned no access token")
		r.logger.Error(ctx, "Error refreshing the access token", err, nil)
		return domainerr.ErrRefreshFailed(err)
	}

	r.mu.Lock()
	r.cred = r.cred.Rotate(pair, r.clock.Now())
	refreshedAt := r.cred.LastRefreshedAt
	r.mu.Unlock()

	r.logger.Info(ctx, "Access token refreshed successfully", map[string]interface{}{
		"expires_in":        pair.ExpiresIn,
		"refresh_rotated":   pair.RefreshToken != "" && pair.RefreshToken != current.RefreshToken,
		"last_refreshed_at": refreshedAt,
	})
	logger.LogPerformance(ctx, r.logger, "token_refresh", r.clock.Since(start), nil)
	return nil
}

// Current returns a copy of the credential.
func (r *CredentialRefresher) Current() entity.Credential {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cred
}

// AccessToken returns the current access token, empty before the first
// successful refresh.
func (r *CredentialRefresher) AccessToken() string {
	return r.Current().AccessToken
}
