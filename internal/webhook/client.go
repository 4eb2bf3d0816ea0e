package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Event types sent to the automation webhook.
const (
	TypeOrderCreated       = "ORDER_CREATED"
	TypeOrderStatusUpdated = "ORDER_STATUS_UPDATED"
)

// Client posts JSON envelopes to the external automation webhook. Every call
// is best-effort: failures are logged and swallowed, never surfaced, so a
// dead automation endpoint cannot block a user-visible flow.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Notify posts the payload. The response body is not consumed; only the
// attempt matters.
func (c *Client) Notify(ctx context.Context, payload any) {
	if c == nil || c.url == "" {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Webhook] Failed to encode payload: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		log.Printf("[Webhook] Failed to build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Webhook] Failed to notify: %v", err)
		return
	}
	resp.Body.Close()
}
