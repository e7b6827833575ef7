// Package notify renders and delivers the email digest for high-confidence
// findings through a Resend-style transactional email API. A notifier with
// missing credentials is a logged no-op, never an error.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jonathan/oncoscout/internal/config"
	"github.com/jonathan/oncoscout/internal/types"
)

// Notifier sends the run's notification email.
type Notifier struct {
	cfg     *config.Config
	client  *http.Client
	baseURL string
}

// New creates a Notifier. client may be nil.
func New(cfg *config.Config, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout()}
	}
	return &Notifier{
		cfg:     cfg,
		client:  client,
		baseURL: "https://api.resend.com",
	}
}

// WithBaseURL points the notifier at an alternate delivery host, for tests.
func (n *Notifier) WithBaseURL(base string) *Notifier {
	n.baseURL = strings.TrimSuffix(base, "/")
	return n
}

// emailRequest is the delivery API's payload.
type emailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Notify filters the run to notification-worthy candidates and delivers the
// summary email. It returns nil without sending when email is unconfigured
// or nothing clears the threshold.
func (n *Notifier) Notify(ctx context.Context, candidates []types.EnrichedCandidate) error {
	if !n.cfg.EmailConfigured() {
		fmt.Println("Email notification disabled (missing key, recipient, or disabled in config)")
		return nil
	}

	newTests, newIndications := n.filter(candidates)
	if len(newTests) == 0 && len(newIndications) == 0 {
		fmt.Println("No candidate cleared the notification threshold; no email sent")
		return nil
	}

	subject := Subject(len(newTests), len(newIndications))
	body, err := n.renderBody(newTests, newIndications)
	if err != nil {
		return fmt.Errorf("failed to render notification body: %w", err)
	}

	return n.send(ctx, subject, body)
}

// filter keeps relevant candidates at or above the notify threshold, split
// into the new-test and new-indication groups.
func (n *Notifier) filter(candidates []types.EnrichedCandidate) (newTests, newIndications []types.EnrichedCandidate) {
	for _, c := range candidates {
		cls := c.Classification
		if !cls.IsRelevant || cls.Confidence < n.cfg.NotifyThreshold {
			continue
		}
		switch types.BucketOf(c) {
		case types.BucketNewTest:
			newTests = append(newTests, c)
		case types.BucketNewIndication:
			newIndications = append(newIndications, c)
		}
	}
	return newTests, newIndications
}

// Subject builds the email subject line, omitting an empty side.
func Subject(newTests, newIndications int) string {
	var parts []string
	if newTests > 0 {
		parts = append(parts, fmt.Sprintf("%d new %s", newTests, plural("test", newTests)))
	}
	if newIndications > 0 {
		parts = append(parts, fmt.Sprintf("%d new %s", newIndications, plural("indication", newIndications)))
	}
	return "OncoScout: " + strings.Join(parts, " + ")
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func (n *Notifier) send(ctx context.Context, subject, html string) error {
	payload, err := json.Marshal(emailRequest{
		From:    n.cfg.Email.From,
		To:      n.cfg.Email.To,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.Email.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("email delivery failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("email delivery failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	fmt.Printf("Notification email sent: %s\n", subject)
	return nil
}
