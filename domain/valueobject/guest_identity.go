package valueobject

const (
	DefaultGuestSubject     = "ExternalGuestIdentifier-4"
	DefaultGuestDisplayName = "Johny Doe"
)

// GuestIdentity is the subject/display name pair a guest token is minted for.
type GuestIdentity struct {
	Subject     string `json:"subject"`
	DisplayName string `json:"displayName"`
}

func NewGuestIdentity(subject, displayName string) GuestIdentity {
	if subject == "" {
		subject = DefaultGuestSubject
	}
	if displayName == "" {
		displayName = DefaultGuestDisplayName
	}
	return GuestIdentity{
		Subject:     subject,
		DisplayName: displayName,
	}
}
