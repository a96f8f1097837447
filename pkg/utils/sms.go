package utils

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smarttrans/smarttrans-backend/internal/config"
)

// SMSSender posts messages to the Africa's Talking messaging API.
type SMSSender struct {
	cfg    config.SMSConfig
	client *http.Client
}

func NewSMSSender(cfg config.SMSConfig) *SMSSender {
	return &SMSSender{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *SMSSender) Enabled() bool {
	return s.cfg.Configured()
}

func (s *SMSSender) Send(ctx context.Context, message string, recipients ...string) error {
	if !s.Enabled() {
		return fmt.Errorf("sms gateway credentials not set")
	}
	if len(recipients) == 0 {
		return fmt.Errorf("no sms recipients")
	}

	data := url.Values{}
	data.Set("username", s.cfg.Username)
	data.Set("to", strings.Join(recipients, ","))
	data.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", s.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send SMS: status code %d", resp.StatusCode)
	}
	return nil
}
