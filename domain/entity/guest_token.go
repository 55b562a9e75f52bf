package entity

// GuestToken is a short-lived token minted for an external guest identity.
type GuestToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn,omitempty"`
}
