package messaging

import (
	"strings"
	"unicode/utf8"
)

type ValidationError struct {
	Field   string
	Message string
	Code    string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type SendMessageDTO struct {
	Content string `json:"content"`
}

// Validate trims the content and enforces the length bounds. The trimmed
// form is what gets stored.
func (d *SendMessageDTO) Validate() error {
	d.Content = strings.TrimSpace(d.Content)
	if d.Content == "" {
		return ValidationError{Field: "content", Message: "message content cannot be empty", Code: "EMPTY_MESSAGE"}
	}
	if utf8.RuneCountInString(d.Content) > MaxMessageLength {
		return ValidationError{Field: "content", Message: "message content too long (max 5000 characters)", Code: "MESSAGE_TOO_LONG"}
	}
	return nil
}
