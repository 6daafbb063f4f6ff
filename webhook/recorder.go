package webhook

import (
	"context"

	"github.com/rs/zerolog"
)

/* Recorder durably records envelopes that could not be delivered after
 * exhausting retries. Implementations must never fail the caller: recording
 * is a side effect only and does not change the already-computed result.
 */
type Recorder interface {
	Record(ctx context.Context, envelope Envelope, deliveryError string)
}

// LogRecorder writes failed deliveries to the structured log.
// Used when no durable store is configured.
type LogRecorder struct {
	logger zerolog.Logger
}

func NewLogRecorder(logger zerolog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(_ context.Context, envelope Envelope, deliveryError string) {
	r.logger.Error().
		Str("webhook_id", envelope.ID).
		Str("source", envelope.Source).
		Str("event_type", envelope.EventType).
		Str("delivery_error", deliveryError).
		Msg("webhook delivery failed permanently")
}
