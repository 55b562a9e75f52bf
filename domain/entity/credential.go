package entity

import (
	"time"

	"github.com/guestgate/guestgate/domain/valueobject"
)

// CredentialState is EMPTY until the first successful refresh and VALID afterwards.
type CredentialState string

const (
	CredentialEmpty CredentialState = "EMPTY"
	CredentialValid CredentialState = "VALID"
)

// Credential is the process-wide OAuth credential used to call the platform.
type Credential struct {
	AccessToken     string    `json:"-"`
	RefreshToken    string    `json:"-"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

func NewCredential(refreshToken string) Credential {
	return Credential{
		RefreshToken: refreshToken,
	}
}

func (c Credential) State() CredentialState {
	if c.AccessToken == "" {
		return CredentialEmpty
	}
	return CredentialValid
}

// Rotate returns the credential that results from a successful refresh.
// Unlike a plain copy of the response, a missing refresh token keeps the
// current one so the next refresh still has something to exchange.
func (c Credential) Rotate(pair *valueobject.TokenPair, at time.Time) Credential {
	next := Credential{
		AccessToken:     pair.AccessToken,
		RefreshToken:    pair.RefreshToken,
		LastRefreshedAt: at,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = c.RefreshToken
	}
	return next
}
