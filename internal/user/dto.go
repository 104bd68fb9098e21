package user

import (
	"net/mail"
	"strings"

	"github.com/frahmantamala/agency-portal/internal/auth"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type CreateStaffDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (d *CreateStaffDTO) Validate() error {
	d.Email = strings.TrimSpace(strings.ToLower(d.Email))
	d.Name = strings.TrimSpace(d.Name)

	if d.Email == "" {
		return ValidationError{Field: "email", Message: "is required"}
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return ValidationError{Field: "email", Message: "is not a valid address"}
	}
	if d.Name == "" {
		return ValidationError{Field: "name", Message: "is required"}
	}
	if len(d.Password) < 8 {
		return ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}

	role, err := auth.ParseRole(d.Role)
	if err != nil || !role.IsStaff() {
		return ValidationError{Field: "role", Message: "must be ADMIN, EDITOR or VIEWER"}
	}
	return nil
}

func (d *CreateStaffDTO) ParsedRole() auth.Role {
	role, _ := auth.ParseRole(d.Role)
	return role
}

type CreateClientDTO struct {
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	CompanyName *string `json:"company_name,omitempty"`
}

func (d *CreateClientDTO) Validate() error {
	d.Email = strings.TrimSpace(strings.ToLower(d.Email))
	d.Name = strings.TrimSpace(d.Name)

	if d.Email == "" {
		return ValidationError{Field: "email", Message: "is required"}
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return ValidationError{Field: "email", Message: "is not a valid address"}
	}
	if d.Name == "" {
		return ValidationError{Field: "name", Message: "is required"}
	}
	return nil
}

type UpdateUserDTO struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (d *UpdateUserDTO) Validate() error {
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if d.Email != nil {
		normalized := strings.TrimSpace(strings.ToLower(*d.Email))
		if _, err := mail.ParseAddress(normalized); err != nil {
			return ValidationError{Field: "email", Message: "is not a valid address"}
		}
		d.Email = &normalized
	}
	return nil
}
