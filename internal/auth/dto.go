package auth

import "strings"

// LoginDTO is the transport shape used by the HTTP handler to accept
// password login requests from staff accounts.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccessCodeLoginDTO accepts the 8-character client access code.
type AccessCodeLoginDTO struct {
	AccessCode string `json:"access_code"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d AccessCodeLoginDTO) Validate() error {
	code := strings.TrimSpace(d.AccessCode)
	if code == "" {
		return ValidationError{Msg: "access_code is required"}
	}
	if len(code) != AccessCodeLength {
		return ValidationError{Msg: "access_code must be 8 characters"}
	}
	return nil
}

// NormalizedCode returns the trimmed, upper-cased form that is stored.
func (d AccessCodeLoginDTO) NormalizedCode() string {
	return strings.ToUpper(strings.TrimSpace(d.AccessCode))
}

// Validate for refresh token DTO
func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Msg: "refresh_token is required"}
	}
	return nil
}
