package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// WebhookGateway POSTs each notification as JSON to a chat bridge.
type WebhookGateway struct {
	url    string
	client *http.Client
}

type webhookPayload struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// NewWebhookGateway creates a gateway posting to url. A nil client uses http.DefaultClient.
func NewWebhookGateway(url string, client *http.Client) *WebhookGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookGateway{url: url, client: client}
}

func (g *WebhookGateway) Send(ctx context.Context, userID, text string) error {
	if userID == "" {
		return ErrEmptyRecipient
	}

	body, err := json.Marshal(webhookPayload{UserID: userID, Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}
