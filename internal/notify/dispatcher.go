// Package notify posts new contact submissions to a webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nermi/website/internal/submissions"
)

// EventSubmitted is the event name carried in every payload.
const EventSubmitted = "contact.submitted"

// Payload is the JSON body sent to the webhook.
type Payload struct {
	Event      string                 `json:"event"`
	Submission submissions.Submission `json:"submission"`
	SentAt     time.Time              `json:"sent_at"`
}

// Dispatcher delivers submission notifications to one webhook URL.
type Dispatcher struct {
	url    string
	client *http.Client
}

// NewDispatcher creates a Dispatcher for url with the given client timeout.
func NewDispatcher(url string, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Notify sends sub to the webhook.
func (d *Dispatcher) Notify(ctx context.Context, sub submissions.Submission) error {
	payload, err := json.Marshal(Payload{
		Event:      EventSubmitted,
		Submission: sub,
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshalling webhook payload: %w", err)
	}
	return d.SendWebhook(ctx, d.url, payload)
}

// SendWebhook POSTs payload to the given URL.
func (d *Dispatcher) SendWebhook(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
