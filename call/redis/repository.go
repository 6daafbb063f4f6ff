package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/schedkit/webhook-relay/call"
)

/* Redis implementation of call.Repository
 * One JSON value per call under a common key prefix, so listing is a
 * prefix scan and TTLs come for free from Redis expiration.
 */

const keyPrefix = "call" // Key naming: call:{call_id}

// callRecord is the stored shape; Status persists as its string form.
type callRecord struct {
	ID             string    `json:"id"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	ProviderCallID string    `json:"provider_call_id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Repository struct {
	client *redis.Client
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int) (*Repository, error) {
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

	return &Repository{
		client: client,
	}, nil
}

// Get retrieves a call by ID
func (r *Repository) Get(ctx context.Context, id string) (call.Call, error) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return call.Call{}, call.ErrNotFound
	}
	if err != nil {
		return call.Call{}, fmt.Errorf("getting call: %w", err)
	}
	return decode(data)
}

// Save stores a call, with an optional TTL (zero means no expiration)
func (r *Repository) Save(ctx context.Context, c call.Call, ttl time.Duration) error {
	data, err := json.Marshal(encode(c))
	if err != nil {
		return fmt.Errorf("marshaling call: %w", err)
	}
	if err := r.client.Set(ctx, key(c.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("storing call: %w", err)
	}
	return nil
}

// Delete removes a call record
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("deleting call: %w", err)
	}
	return nil
}

// List returns all stored calls via a prefix scan
func (r *Repository) List(ctx context.Context) ([]call.Call, error) {
	var calls []call.Call

	iter := r.client.Scan(ctx, 0, keyPrefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			// Key expired between scan and read
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading call %s: %w", iter.Val(), err)
		}
		c, err := decode(data)
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning calls: %w", err)
	}

	return calls, nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

func key(id string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, id)
}

func encode(c call.Call) callRecord {
	return callRecord{
		ID:             c.ID,
		Phone:          c.Phone,
		Email:          c.Email,
		Name:           c.Name,
		ScheduledAt:    c.ScheduledAt,
		ProviderCallID: c.ProviderCallID,
		Status:         c.Status.String(),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func decode(data []byte) (call.Call, error) {
	var rec callRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return call.Call{}, fmt.Errorf("unmarshaling call: %w", err)
	}
	return call.Call{
		ID:             rec.ID,
		Phone:          rec.Phone,
		Email:          rec.Email,
		Name:           rec.Name,
		ScheduledAt:    rec.ScheduledAt,
		ProviderCallID: rec.ProviderCallID,
		Status:         call.NewStatus(rec.Status),
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}
