package webhook

import (
	"time"

	"github.com/google/uuid"
	"github.com/schedkit/webhook-relay/webhook/payload"
)

/* Transformer maps a provider event onto the canonical envelope.
 * Pure aside from the injected clock and ID generator, so tests can pin both.
 */
type Transformer struct {
	now   func() time.Time
	newID func() string
}

// NewTransformer creates a transformer using the wall clock and random UUIDs.
func NewTransformer() *Transformer {
	return &Transformer{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock replaces the wall-clock read, for deterministic tests.
func (t *Transformer) WithClock(now func() time.Time) *Transformer {
	t.now = now
	return t
}

// WithIDGenerator replaces the envelope ID generator, for deterministic tests.
func (t *Transformer) WithIDGenerator(newID func() string) *Transformer {
	t.newID = newID
	return t
}

// Transform builds a fresh envelope for the given source tag and event.
// The envelope ID is independent of any ID carried by the provider payload.
func (t *Transformer) Transform(source string, event payload.Event) Envelope {
	return Envelope{
		ID:        t.newID(),
		Timestamp: t.now().Unix(),
		Source:    source,
		EventType: string(event.Type),
		EmailID:   event.Data.ID,
		EmailData: EmailData{
			From:    event.Data.From,
			To:      []string(event.Data.To),
			Subject: event.Data.Subject,
			SentAt:  event.Data.CreatedAt,
		},
		EventData: eventData(event),
		Metadata: Metadata{
			OriginalTimestamp: event.CreatedAt,
		},
	}
}

/* eventData extracts the family-specific fields. The switch is exhaustive
 * over the supported event types; an unrecognized type slipping past
 * validation is tagged rather than dropped.
 */
func eventData(event payload.Event) map[string]any {
	switch event.Type {
	case payload.EmailBounced:
		bounceCode, bounceDescription := "", ""
		if event.Data.Bounce != nil {
			bounceCode = event.Data.Bounce.Code
			bounceDescription = event.Data.Bounce.Description
		}
		return map[string]any{
			"bounceCode":        bounceCode,
			"bounceDescription": bounceDescription,
		}
	case payload.EmailOpened:
		ipAddress, userAgent := "", ""
		if event.Data.Email != nil {
			ipAddress = event.Data.Email.IPAddress
			userAgent = event.Data.Email.UserAgent
		}
		return map[string]any{
			"ipAddress": ipAddress,
			"userAgent": userAgent,
		}
	case payload.EmailClicked:
		ipAddress, userAgent, url := "", "", ""
		if event.Data.Email != nil {
			ipAddress = event.Data.Email.IPAddress
			userAgent = event.Data.Email.UserAgent
			url = event.Data.Email.URL
		}
		return map[string]any{
			"ipAddress": ipAddress,
			"userAgent": userAgent,
			"url":       url,
		}
	case payload.EmailSent, payload.EmailDelivered, payload.EmailDeliveryDelayed, payload.EmailComplained:
		return map[string]any{}
	default:
		return map[string]any{"unknownEventType": string(event.Type)}
	}
}
