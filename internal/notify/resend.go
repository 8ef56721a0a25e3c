package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/seeg/onehcm/internal/utils"
)

const (
	DefaultResendURL = "https://api.resend.com"
	resendTimeout    = 15 * time.Second
)

// ResendSender delivers through the Resend HTTP API.
type ResendSender struct {
	apiKey     string
	APIURL     string
	HTTPClient *http.Client
}

func NewResendSender(apiURL, apiKey string) *ResendSender {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = DefaultResendURL
	}
	return &ResendSender{
		apiKey:     strings.TrimSpace(apiKey),
		APIURL:     apiURL,
		HTTPClient: &http.Client{Timeout: resendTimeout},
	}
}

func (r *ResendSender) Name() string {
	return "resend"
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

func (r *ResendSender) Send(ctx context.Context, from string, msg Message) error {
	if r.apiKey == "" {
		return fmt.Errorf("resend api key is not configured")
	}

	body, err := json.Marshal(resendPayload{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("encode resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.APIURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build resend request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("call resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("bad status: %s: %s", resp.Status, utils.TruncateForLog(string(data), 300))
	}

	return nil
}
