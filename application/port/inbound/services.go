package inbound

import (
	"context"
	"time"

	"github.com/guestgate/guestgate/domain/entity"
)

// CredentialService owns the process-wide platform credential.
// Implemented by application/usecase.CredentialRefresher
type CredentialService interface {
	Refresh(ctx context.Context) error
	Current() entity.Credential
	AccessToken() string
}

// GuestTokenUseCase mints a guest token with the current credential.
type GuestTokenUseCase interface {
	IssueGuestToken(ctx context.Context) (*entity.GuestToken, error)
}

// AccessRequestInput is the raw form submission.
type AccessRequestInput struct {
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	IDNumber    string `json:"idNumber"`
	IDType      string `json:"idType"`
	RequestType string `json:"requestType"`
}

// AccessRequestUseCase records access request submissions.
type AccessRequestUseCase interface {
	Submit(ctx context.Context, input AccessRequestInput) (*entity.AccessRequest, error)
}

// RateLimitService defines rate limiting behavior used by middleware
// Implemented by infrastructure/service/ratelimit
type RateLimitService interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}
