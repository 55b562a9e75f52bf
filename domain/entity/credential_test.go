package entity

import (
	"testing"
	"time"

	"github.com/guestgate/guestgate/domain/valueobject"
)

func TestNewCredential(t *testing.T) {
	cred := NewCredential("initial-refresh")

	if cred.RefreshToken != "initial-refresh" {
		t.Errorf("Expected refresh token %s, got %s", "initial-refresh", cred.RefreshToken)
	}

	if cred.State() != CredentialEmpty {
		t.Errorf("Expected state %s, got %s", CredentialEmpty, cred.State())
	}

	if !cred.LastRefreshedAt.IsZero() {
		t.Errorf("Expected zero LastRefreshedAt, got %v", cred.LastRefreshedAt)
	}
}

func TestCredential_Rotate(t *testing.T) {
	at := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	cred := NewCredential("old-refresh")

	next := cred.Rotate(valueobject.NewTokenPair("new-access", "new-refresh", 1209599), at)

	if next.AccessToken != "new-access" {
		t.Errorf("Expected access token %s, got %s", "new-access", next.AccessToken)
	}

	if next.RefreshToken != "new-refresh" {
		t.Errorf("Expected refresh token %s, got %s", "new-refresh", next.RefreshToken)
	}

	if !next.LastRefreshedAt.Equal(at) {
		t.Errorf("Expected LastRefreshedAt %v, got %v", at, next.LastRefreshedAt)
	}

	if next.State() != CredentialValid {
		t.Errorf("Expected state %s, got %s", CredentialValid, next.State())
	}

	// the receiver is a value and must stay untouched
	if cred.AccessToken != "" || cred.RefreshToken != "old-refresh" {
		t.Errorf("Rotate mutated the original credential: %+v", cred)
	}
}

func TestCredential_RotateKeepsRefreshTokenWhenAbsent(t *testing.T) {
	cred := NewCredential("old-refresh")

	next := cred.Rotate(valueobject.NewTokenPair("new-access", "", 0), time.Now())

	if next.RefreshToken != "old-refresh" {
		t.Errorf("Expected refresh token %s, got %s", "old-refresh", next.RefreshToken)
	}
}
