package auth

import "strings"

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

// NormalizedEmail lower-cases and trims the email so lookups are
// case-insensitive.
func (d LoginDTO) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(d.Email))
}
