package lead

import (
	"net/mail"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type CreateLeadDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message"`
	Source  string `json:"source"`

	// Website is a honeypot. The real form never fills it; bots do.
	Website string `json:"website"`
}

func (d *CreateLeadDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(strings.ToLower(d.Email))
	d.Message = strings.TrimSpace(d.Message)

	if d.Name == "" {
		return ValidationError{Field: "name", Message: "is required"}
	}
	if d.Email == "" {
		return ValidationError{Field: "email", Message: "is required"}
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return ValidationError{Field: "email", Message: "is not a valid address"}
	}
	if d.Message == "" {
		return ValidationError{Field: "message", Message: "is required"}
	}
	if len(d.Message) > 10000 {
		return ValidationError{Field: "message", Message: "is too long"}
	}
	return nil
}

type UpdateLeadStatusDTO struct {
	Status string `json:"status"`
}
