package outbound

import (
	"context"

	"github.com/guestgate/guestgate/domain/entity"
	"github.com/guestgate/guestgate/domain/valueobject"
)

// TokenRefresher exchanges a refresh token for a new token pair.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*valueobject.TokenPair, error)
}

// GuestTokenService mints guest tokens on behalf of the service app.
type GuestTokenService interface {
	CreateGuestToken(ctx context.Context, bearer string, identity valueobject.GuestIdentity) (*entity.GuestToken, error)
}
