package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// EmailSender delivers notifications to the agency inbox over SMTP.
type EmailSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       string
	logger   *slog.Logger
}

func NewEmailSender(host string, port int, username, password, from, to string, logger *slog.Logger) *EmailSender {
	return &EmailSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
		logger:   logger,
	}
}

func (e *EmailSender) Name() string {
	return "email"
}

func (e *EmailSender) Send(_ context.Context, job Job) error {
	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		e.from, e.to, job.Subject, job.Body))

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	if err := smtp.SendMail(addr, auth, e.from, []string{e.to}, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
