package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// SlackSender posts notifications to a Slack incoming webhook.
type SlackSender struct {
	webhookURL string
	timeout    time.Duration
	client     *http.Client
	logger     *slog.Logger
}

func NewSlackSender(webhookURL string, timeout time.Duration, logger *slog.Logger) *SlackSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SlackSender{
		webhookURL: webhookURL,
		timeout:    timeout,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (s *SlackSender) Name() string {
	return "slack"
}

func (s *SlackSender) Send(ctx context.Context, job Job) error {
	payload := map[string]string{
		"text": fmt.Sprintf("*%s*\n%s", job.Subject, job.Body),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}
