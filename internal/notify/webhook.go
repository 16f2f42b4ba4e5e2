// Package notify forwards contact submissions to an administrator webhook.
// Delivery is best effort: failures are logged, never surfaced to the
// submitting client.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"storefront/internal/models"
	"storefront/internal/patterns"
)

const webhookTimeout = 3 * time.Second

// Notifier receives domain events worth telling an administrator about.
type Notifier interface {
	ContactSubmitted(ctx context.Context, contact *models.Contact)
}

// Noop discards every notification. Used when no webhook is configured.
type Noop struct{}

func (Noop) ContactSubmitted(context.Context, *models.Contact) {}

// Webhook posts notifications to a configured URL. The outbound call runs
// inside a bulkhead and a circuit breaker so a dead webhook endpoint
// cannot pile up goroutines or latency.
type Webhook struct {
	client   *resty.Client
	url      string
	circuit  *patterns.CircuitBreaker
	bulkhead *patterns.Bulkhead
}

// NewWebhook creates a webhook notifier for the given URL.
func NewWebhook(url, service string) *Webhook {
	return &Webhook{
		client: resty.New().
			SetTimeout(webhookTimeout).
			SetRetryCount(0),
		url:      url,
		circuit:  patterns.NewCircuitBreaker("AdminWebhook", service),
		bulkhead: patterns.NewBulkhead(4, "webhook", service),
	}
}

// ContactSubmitted posts the submission using the external field names.
func (w *Webhook) ContactSubmitted(ctx context.Context, contact *models.Contact) {
	payload := models.ContactToResponse(contact)

	err := w.bulkhead.Execute(func() error {
		_, cbErr := w.circuit.Execute(func() (interface{}, error) {
			resp, httpErr := w.client.R().
				SetContext(ctx).
				SetHeader("Content-Type", "application/json").
				SetBody(payload).
				Post(w.url)
			if httpErr != nil {
				return nil, fmt.Errorf("HTTP error: %w", httpErr)
			}
			if resp.StatusCode() >= http.StatusMultipleChoices {
				return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode())
			}
			return nil, nil
		})
		return patterns.FormatError("AdminWebhook", cbErr)
	})
	if err != nil {
		log.WithField("contact_id", contact.ID).Warn("Admin webhook notification failed: ", err)
	}
}
