package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Doer abstracts the HTTP client so tests can stub the transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SleepFunc waits for the given duration or until the context is done.
// Injectable so tests can run the full retry loop without real delays.
type SleepFunc func(ctx context.Context, d time.Duration)

/* Forwarder relays canonical envelopes to the configured downstream endpoint.
 * Retry policy: only server errors (>=500) and transport failures are retried,
 * up to maxRetries additional attempts, with exponential backoff
 * retryDelay * 2^attempt before each retry.
 */
type Forwarder struct {
	client     Doer
	targetURL  string
	authHeader string
	authToken  string
	maxRetries int
	retryDelay time.Duration
	sleep      SleepFunc
	logger     zerolog.Logger
}

// NewForwarder creates a forwarder with a sane default network timeout.
func NewForwarder(targetURL, authHeader, authToken string, maxRetries int, retryDelay time.Duration, logger zerolog.Logger) *Forwarder {
	if authHeader == "" {
		authHeader = "Authorization"
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Forwarder{
		client:     &http.Client{Timeout: 30 * time.Second},
		targetURL:  targetURL,
		authHeader: authHeader,
		authToken:  authToken,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		sleep:      contextSleep,
		logger:     logger,
	}
}

// WithClient replaces the HTTP client.
func (f *Forwarder) WithClient(client Doer) *Forwarder {
	f.client = client
	return f
}

// WithSleep replaces the backoff sleep function.
func (f *Forwarder) WithSleep(sleep SleepFunc) *Forwarder {
	f.sleep = sleep
	return f
}

// Forward delivers the envelope and returns the terminal result.
// It never returns an error: every outcome is folded into the DeliveryResult.
func (f *Forwarder) Forward(ctx context.Context, envelope Envelope) DeliveryResult {
	result := DeliveryResult{
		WebhookID: envelope.ID,
		EventType: envelope.EventType,
		Timestamp: time.Now().Unix(),
	}

	if f.targetURL == "" {
		result.Error = "target webhook URL not configured"
		return result
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		result.Error = fmt.Sprintf("marshaling envelope: %v", err)
		return result
	}

	var lastTransportErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			// Backoff before retry attempt N uses 2^(N-1) times the base delay
			delay := f.retryDelay * (1 << (attempt - 1))
			f.logger.Debug().
				Str("webhook_id", envelope.ID).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("retrying webhook delivery")
			f.sleep(ctx, delay)
		}

		statusCode, respBody, err := f.post(ctx, body, envelope)
		if err != nil {
			lastTransportErr = err
			f.logger.Debug().
				Str("webhook_id", envelope.ID).
				Err(err).
				Msg("webhook delivery transport failure")
			continue
		}
		lastTransportErr = nil

		if statusCode >= 500 {
			result.StatusCode = statusCode
			result.Error = responseError(statusCode, respBody)
			continue
		}

		if statusCode >= 200 && statusCode < 300 {
			result.Success = true
			result.StatusCode = statusCode
			result.Error = ""
			return result
		}

		// Client errors are terminal: retrying a 4xx cannot succeed
		result.StatusCode = statusCode
		result.Error = responseError(statusCode, respBody)
		return result
	}

	if lastTransportErr != nil {
		result.StatusCode = 0
		result.Error = fmt.Sprintf("delivering webhook: %v", lastTransportErr)
	}
	return result
}

func (f *Forwarder) post(ctx context.Context, body []byte, envelope Envelope) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.targetURL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(f.authHeader, "Bearer "+f.authToken)
	req.Header.Set("X-Webhook-Source", envelope.Source)
	req.Header.Set("X-Webhook-ID", envelope.ID)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		respBody = nil
	}
	return resp.StatusCode, respBody, nil
}

func responseError(statusCode int, body []byte) string {
	return fmt.Sprintf("target responded %d %s: %s", statusCode, http.StatusText(statusCode), body)
}

func contextSleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
