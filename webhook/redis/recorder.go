package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schedkit/webhook-relay/webhook"
)

/* Redis implementation of webhook.Recorder
 * Uses a hash per failed webhook for inspection and a list per source as a
 * replay queue. Entries expire so the store cannot grow without bound.
 */

const (
	failedHashPrefix  = "failed:webhook"  // Hash naming: failed:webhook:{webhook_id}
	failedQueuePrefix = "failed:queue"    // List naming: failed:queue:{source}
	sourceSetKey      = "failed:sources"  // Set of sources that ever recorded a failure
	defaultFailedTTL  = 7 * 24 * time.Hour
)

type Recorder struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRecorder creates a new Redis recorder
func NewRecorder(addr, password string, db int, logger zerolog.Logger) (*Recorder, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Recorder{
		client: client,
		ttl:    defaultFailedTTL,
		logger: logger,
	}, nil
}

// WithTTL overrides how long failed entries are retained.
func (r *Recorder) WithTTL(ttl time.Duration) *Recorder {
	r.ttl = ttl
	return r
}

/* Record stores the envelope and final error for offline replay.
 * It never returns an error to the caller: storage failures are logged and
 * the already-computed delivery result stands.
 */
func (r *Recorder) Record(ctx context.Context, envelope webhook.Envelope, deliveryError string) {
	envelopeJSON, err := json.Marshal(envelope)
	if err != nil {
		r.logger.Error().Err(err).Str("webhook_id", envelope.ID).Msg("marshaling failed envelope")
		return
	}

	hashKey := fmt.Sprintf("%s:%s", failedHashPrefix, envelope.ID)
	err = r.client.HSet(ctx, hashKey, map[string]interface{}{
		"envelope":    string(envelopeJSON),
		"error":       deliveryError,
		"source":      envelope.Source,
		"event_type":  envelope.EventType,
		"recorded_at": time.Now().Unix(),
	}).Err()
	if err != nil {
		r.logger.Error().Err(err).Str("webhook_id", envelope.ID).Msg("storing failed webhook")
		return
	}
	r.client.Expire(ctx, hashKey, r.ttl)

	queueKey := fmt.Sprintf("%s:%s", failedQueuePrefix, envelope.Source)
	if err := r.client.RPush(ctx, queueKey, envelope.ID).Err(); err != nil {
		r.logger.Error().Err(err).Str("webhook_id", envelope.ID).Msg("queueing failed webhook")
		return
	}
	r.client.SAdd(ctx, sourceSetKey, envelope.Source)

	r.logger.Info().
		Str("webhook_id", envelope.ID).
		Str("source", envelope.Source).
		Str("event_type", envelope.EventType).
		Msg("failed webhook recorded for replay")
}

// FailedBacklog returns the replay queue length per source.
// Implements metrics.BacklogReader for the backlog gauge.
func (r *Recorder) FailedBacklog(ctx context.Context) (map[string]int64, error) {
	tags, err := r.client.SMembers(ctx, sourceSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing failed sources: %w", err)
	}

	backlog := make(map[string]int64, len(tags))
	for _, tag := range tags {
		length, err := r.client.LLen(ctx, fmt.Sprintf("%s:%s", failedQueuePrefix, tag)).Result()
		if err != nil {
			return nil, fmt.Errorf("reading backlog for source %s: %w", tag, err)
		}
		backlog[tag] = length
	}
	return backlog, nil
}

// Get retrieves a recorded failed webhook by ID, for replay tooling.
func (r *Recorder) Get(ctx context.Context, webhookID string) (webhook.Envelope, string, error) {
	hashKey := fmt.Sprintf("%s:%s", failedHashPrefix, webhookID)

	data, err := r.client.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return webhook.Envelope{}, "", fmt.Errorf("getting failed webhook: %w", err)
	}
	if len(data) == 0 {
		return webhook.Envelope{}, "", fmt.Errorf("failed webhook not found: %s", webhookID)
	}

	var envelope webhook.Envelope
	if err := json.Unmarshal([]byte(data["envelope"]), &envelope); err != nil {
		return webhook.Envelope{}, "", fmt.Errorf("unmarshaling envelope: %w", err)
	}
	return envelope, data["error"], nil
}

// Close closes the Redis connection
func (r *Recorder) Close(ctx context.Context) error {
	return r.client.Close()
}
