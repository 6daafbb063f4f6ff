package metrics

import (
	"context"
	"time"
)

// Recorder records webhook pipeline outcomes.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// WebhookReceived counts an inbound request for a source, before verification
	WebhookReceived(source string)

	// WebhookDelivered counts a successful downstream delivery
	WebhookDelivered(source, eventType string)

	// WebhookFailed counts a terminal pipeline failure by stage
	WebhookFailed(source, stage string)

	// DeliveryDuration records how long one forwarding cycle took, retries included
	DeliveryDuration(source string, elapsed time.Duration)
}

// BacklogReader reports the number of recorded failed deliveries per source.
// The Redis recorder implements it; the exporter polls it via a gauge callback.
type BacklogReader interface {
	FailedBacklog(ctx context.Context) (map[string]int64, error)
}

// Nop is a Recorder that discards everything. Useful in tests.
type Nop struct{}

func NewNop() Nop { return Nop{} }

func (Nop) WebhookReceived(string)                 {}
func (Nop) WebhookDelivered(string, string)        {}
func (Nop) WebhookFailed(string, string)           {}
func (Nop) DeliveryDuration(string, time.Duration) {}
