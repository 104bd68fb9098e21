package analytics

import "strings"

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type IngestEventDTO struct {
	SessionID string `json:"session_id,omitempty"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	Referrer  string `json:"referrer"`
}

func (d *IngestEventDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Path = strings.TrimSpace(d.Path)

	if d.Name == "" {
		return ValidationError{Field: "name", Message: "is required"}
	}
	if len(d.Name) > 100 {
		return ValidationError{Field: "name", Message: "is too long"}
	}
	if len(d.Path) > 500 {
		return ValidationError{Field: "path", Message: "is too long"}
	}
	return nil
}
