package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/meshforge/printquote/orders"
)

// BotNotifier pushes an order notification to a messaging-bot webhook
// as a JSON POST. The HTTP client is shared and persistent.
type BotNotifier struct {
	endpoint string
	client   *http.Client
}

// NewBotNotifier creates a notifier for the given webhook endpoint.
func NewBotNotifier(endpoint string) *BotNotifier {
	return &BotNotifier{
		endpoint: endpoint,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: 15 * time.Second,
		},
	}
}

func (b *BotNotifier) Name() string { return "bot" }

// NotifyOrder posts the order summary to the webhook. Any non-2xx
// response is an error.
func (b *BotNotifier) NotifyOrder(ctx context.Context, o *orders.Order) error {
	payload, err := json.Marshal(map[string]any{
		"order_id": o.ID,
		"name":     o.Name,
		"phone":    o.Phone,
		"address":  o.Address,
		"quote":    o.Quote,
	})
	if err != nil {
		return fmt.Errorf("notify: marshal bot payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: bot request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: bot post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: bot webhook returned %s", resp.Status)
	}
	return nil
}
