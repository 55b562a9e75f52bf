package usecase

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/guestgate/guestgate/application/port/inbound"
	"github.com/guestgate/guestgate/application/port/outbound"
	domainerr "github.com/guestgate/guestgate/domain/error"
	"github.com/guestgate/guestgate/domain/entity"
	"github.com/guestgate/guestgate/domain/valueobject"
	"github.com/guestgate/guestgate/infrastructure/service/jwt"
	"github.com/guestgate/guestgate/infrastructure/service/logger"
)

type guestTokenUseCase struct {
	credentials inbound.CredentialService
	guests      outbound.GuestTokenService
	identity    valueobject.GuestIdentity
	clock       clockwork.Clock
	logger      logger.Logger
}

// NewGuestTokenUseCase mints guest tokens for a fixed identity using the
// current service credential.
func NewGuestTokenUseCase(credentials inbound.CredentialService, guests outbound.GuestTokenService, identity valueobject.GuestIdentity, clock clockwork.Clock, log logger.Logger) inbound.GuestTokenUseCase {
	return &guestTokenUseCase{
		credentials: credentials,
		guests:      guests,
		identity:    identity,
		clock:       clock,
		logger:      log,
	}
}

// IssueGuestToken does not check for an empty credential; the platform
// rejects it and that surfaces as an issuance failure.
func (uc *guestTokenUseCase) IssueGuestToken(ctx context.Context) (*entity.GuestToken, error) {
	token, err := uc.guests.CreateGuestToken(ctx, uc.credentials.AccessToken(), uc.identity)
	if err != nil {
		uc.logger.Error(ctx, "Error creating the guest token", err, map[string]interface{}{
			"subject": uc.identity.Subject,
		})
		return nil, domainerr.ErrIssuanceFailed(err)
	}

	if token.ExpiresIn == 0 {
		token.ExpiresIn = jwt.ExpiresIn(token.AccessToken, uc.clock.Now())
	}

	uc.logger.Info(ctx, "Guest token created successfully", map[string]interface{}{
		"subject":    uc.identity.Subject,
		"expires_in": token.ExpiresIn,
	})
	return token, nil
}
