package validator

import (
	"net/mail"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

func ValidateEmail(email string) bool {
	if email == "" {
		return false
	}

	// net/mail accepts display names and comments, the regex pins the bare form
	if _, err := mail.ParseAddress(email); err != nil {
		return false
	}

	return emailRegex.MatchString(strings.ToLower(email))
}
