package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/schedkit/webhook-relay/metrics"
	"github.com/schedkit/webhook-relay/sources"
	"github.com/schedkit/webhook-relay/webhook/payload"
	"github.com/schedkit/webhook-relay/webhook/signature"
)

/* Service composes the pipeline: verify, validate, transform, forward, record.
 * One inbound request is processed end-to-end by one call to Process; the only
 * shared state is read-only configuration, so concurrent calls need no locking.
 */

// UseCase defines the processing operation exposed to the HTTP layer
type UseCase interface {
	Process(ctx context.Context, source *sources.Source, body []byte, headers http.Header) DeliveryResult
}

type Service struct {
	transformer *Transformer
	forwarder   *Forwarder
	recorder    Recorder
	storeFailed bool
	metrics     metrics.Recorder
	logger      zerolog.Logger
}

// NewService creates the pipeline service with dependency injection.
// recorder may be nil; it is only consulted when storeFailed is true.
func NewService(transformer *Transformer, forwarder *Forwarder, recorder Recorder, storeFailed bool, rec metrics.Recorder, logger zerolog.Logger) *Service {
	if rec == nil {
		rec = metrics.NewNop()
	}
	return &Service{
		transformer: transformer,
		forwarder:   forwarder,
		recorder:    recorder,
		storeFailed: storeFailed,
		metrics:     rec,
		logger:      logger,
	}
}

/* Process runs the pipeline for one raw request. It always returns a
 * DeliveryResult: expected failures are folded into the result, and anything
 * unanticipated is caught at this boundary and reported as a generic failure.
 */
func (s *Service) Process(ctx context.Context, source *sources.Source, body []byte, headers http.Header) (result DeliveryResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("unexpected failure processing webhook")
			result = s.failure(source.Tag, WebhookIDError, "unknown", fmt.Sprintf("error processing webhook: %v", r))
		}
	}()

	s.metrics.WebhookReceived(source.Tag)

	verifier := signature.NewVerifier(source.SigningSecret, source.MaxAge)
	sigHeader := headers.Get(source.SignatureHeader)
	tsHeader := headers.Get(source.TimestampHeader)
	if err := verifier.Verify(body, sigHeader, tsHeader); err != nil {
		return s.failure(source.Tag, WebhookIDInvalidSignature, "unknown", "invalid webhook signature: "+err.Error())
	}

	decoded, err := payload.Decode(body)
	if err != nil {
		return s.failure(source.Tag, WebhookIDInvalidJSON, "unknown", "invalid JSON payload: "+err.Error())
	}

	if err := payload.Validate(decoded); err != nil {
		return s.failure(source.Tag, WebhookIDInvalidPayload, payload.TypeOf(decoded), "invalid payload structure: "+err.Error())
	}

	event, err := payload.Parse(body)
	if err != nil {
		return s.failure(source.Tag, WebhookIDInvalidPayload, payload.TypeOf(decoded), "invalid payload structure: "+err.Error())
	}

	envelope := s.transformer.Transform(source.Tag, event)

	start := time.Now()
	result = s.forwarder.Forward(ctx, envelope)
	s.metrics.DeliveryDuration(source.Tag, time.Since(start))

	if result.Success {
		s.metrics.WebhookDelivered(source.Tag, result.EventType)
		s.logger.Debug().
			Str("webhook_id", result.WebhookID).
			Str("event_type", result.EventType).
			Int("status_code", result.StatusCode).
			Msg("webhook forwarded")
		return result
	}

	s.metrics.WebhookFailed(source.Tag, "delivery")
	if s.storeFailed && s.recorder != nil {
		// Fire-and-continue: recording never changes the computed result
		s.recorder.Record(ctx, envelope, result.Error)
	}
	return result
}

func (s *Service) failure(sourceTag, webhookID, eventType, message string) DeliveryResult {
	s.metrics.WebhookFailed(sourceTag, webhookID)
	return DeliveryResult{
		Success:   false,
		WebhookID: webhookID,
		EventType: eventType,
		Timestamp: time.Now().Unix(),
		Error:     message,
	}
}
