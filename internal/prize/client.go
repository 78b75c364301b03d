package prize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
)

// PayoutClient invokes the external payout API. A nil error means the payout
// was accepted; anything else counts as a failed attempt.
type PayoutClient interface {
	Pay(ctx context.Context, item *domain.PrizeQueueItem) error
}

// payoutRequest is the external API's request body
type payoutRequest struct {
	UserID     uuid.UUID       `json:"userId"`
	Category   domain.Category `json:"category"`
	PrizeValue int             `json:"prizeValue"`
}

// HTTPPayoutClient calls the payout API over HTTP. Every request carries the
// item's idempotency key so retried deliveries are deduplicated remotely.
type HTTPPayoutClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPPayoutClient creates a payout client with a bounded per-request timeout
func NewHTTPPayoutClient(baseURL string, timeout time.Duration) *HTTPPayoutClient {
	return &HTTPPayoutClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Pay posts one payout. Non-2xx responses and transport errors (including
// timeouts) are failures.
func (c *HTTPPayoutClient) Pay(ctx context.Context, item *domain.PrizeQueueItem) error {
	body, err := json.Marshal(payoutRequest{
		UserID:     item.UserID,
		Category:   item.Category,
		PrizeValue: item.PrizeValue,
	})
	if err != nil {
		return fmt.Errorf("failed to encode payout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build payout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderIdempotencyKey, item.IdempotencyKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToInvokePayout, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: status %d", ErrContextFailedToInvokePayout, resp.StatusCode)
	}
	return nil
}
