package handler

import (
	"net/http"

	"github.com/guestgate/guestgate/application/port/inbound"
	"github.com/guestgate/guestgate/infrastructure/http/response"
)

const guestTokenFailureMessage = "Failed to create the guest token"

type GuestTokenHandler struct {
	guestTokenUseCase inbound.GuestTokenUseCase
}

func NewGuestTokenHandler(guestTokenUseCase inbound.GuestTokenUseCase) *GuestTokenHandler {
	return &GuestTokenHandler{
		guestTokenUseCase: guestTokenUseCase,
	}
}

type GuestTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type GuestTokenErrorResponse struct {
	Error string `json:"error"`
}

// GetAccessToken mints a guest token with the current service credential.
// The cause of a failure is logged by the use case and never returned.
func (h *GuestTokenHandler) GetAccessToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.guestTokenUseCase.IssueGuestToken(r.Context())
	if err != nil {
		response.WriteJSON(w, http.StatusInternalServerError, GuestTokenErrorResponse{Error: guestTokenFailureMessage})
		return
	}

	response.OK(w, GuestTokenResponse{AccessToken: token.AccessToken})
}
