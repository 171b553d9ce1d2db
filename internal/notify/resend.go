package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultResendEndpoint = "https://api.resend.com/emails"

// Resend mails the endpoint's notify address through the Resend HTTP API.
// Messages without a recipient are skipped.
type Resend struct {
	APIKey   string
	From     string
	Endpoint string
	Client   *http.Client
}

func NewResend(apiKey, from string) *Resend {
	if apiKey == "" {
		return nil
	}
	if from == "" {
		from = "Uptime Monitor <alerts@uptimewatch.dev>"
	}
	return &Resend{
		APIKey:   apiKey,
		From:     from,
		Endpoint: DefaultResendEndpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (r *Resend) Notify(ctx context.Context, recipient, subject, body string) error {
	if r == nil || r.APIKey == "" {
		return errors.New("resend disabled")
	}
	if recipient == "" {
		return nil
	}
	payload, err := json.Marshal(resendEmail{
		From:    r.From,
		To:      []string{recipient},
		Subject: subject,
		HTML:    bodyHTML(subject, body),
	})
	if err != nil {
		return fmt.Errorf("resend payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("resend post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend non-2xx: %d %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func bodyHTML(subject, body string) string {
	var b strings.Builder
	b.WriteString("<h2>")
	b.WriteString(html.EscapeString(subject))
	b.WriteString("</h2><p>")
	for i, line := range strings.Split(body, "\n") {
		if i > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(html.EscapeString(line))
	}
	b.WriteString("</p>")
	return b.String()
}
