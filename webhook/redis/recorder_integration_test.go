//go:build integration

package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/schedkit/webhook-relay/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failedEnvelope(id string) webhook.Envelope {
	return webhook.Envelope{
		ID:        id,
		Timestamp: time.Now().Unix(),
		Source:    "resend",
		EventType: "email.bounced",
		EmailID:   "msg_1",
		EmailData: webhook.EmailData{
			From:    "sender@example.com",
			To:      []string{"rcpt@example.com"},
			Subject: "Hello",
		},
		EventData: map[string]any{
			"bounceCode":        "550",
			"bounceDescription": "mailbox unavailable",
		},
	}
}

func TestRecorder_Record_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("record and retrieve failed webhook", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		recorder := CreateTestRecorder(t, redisContainer.Addr)
		defer recorder.Close(ctx)

		envelope := failedEnvelope("whk_failed_1")
		recorder.Record(ctx, envelope, "target responded 503 Service Unavailable: try later")

		retrieved, deliveryError, err := recorder.Get(ctx, envelope.ID)
		require.NoError(t, err)

		assert.Equal(t, envelope, retrieved)
		assert.Equal(t, "target responded 503 Service Unavailable: try later", deliveryError)
	})

	t.Run("recorded entry expires", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		recorder := CreateTestRecorder(t, redisContainer.Addr).WithTTL(time.Hour)
		defer recorder.Close(ctx)

		envelope := failedEnvelope("whk_failed_2")
		recorder.Record(ctx, envelope, "delivery error")

		ttl := GetKeyTTL(t, redisContainer.Addr, fmt.Sprintf("failed:webhook:%s", envelope.ID))
		assert.Greater(t, ttl, int64(0))
		assert.LessOrEqual(t, ttl, int64(3600))
	})

	t.Run("failures queue per source for replay", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		recorder := CreateTestRecorder(t, redisContainer.Addr)
		defer recorder.Close(ctx)

		recorder.Record(ctx, failedEnvelope("whk_failed_3"), "err")
		recorder.Record(ctx, failedEnvelope("whk_failed_4"), "err")

		assert.Equal(t, int64(2), QueueLength(t, redisContainer.Addr, "resend"))
	})

	t.Run("unknown webhook ID returns not found", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		recorder := CreateTestRecorder(t, redisContainer.Addr)
		defer recorder.Close(ctx)

		_, _, err := recorder.Get(ctx, "whk_missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestRecorder_FailedBacklog_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("backlog reports queue lengths per source", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		recorder := CreateTestRecorder(t, redisContainer.Addr)
		defer recorder.Close(ctx)

		recorder.Record(ctx, failedEnvelope("whk_failed_5"), "err")

		other := failedEnvelope("whk_failed_6")
		other.Source = "postmark"
		recorder.Record(ctx, other, "err")
		other2 := failedEnvelope("whk_failed_7")
		other2.Source = "postmark"
		recorder.Record(ctx, other2, "err")

		backlog, err := recorder.FailedBacklog(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(1), backlog["resend"])
		assert.Equal(t, int64(2), backlog["postmark"])
	})

	t.Run("empty store reports empty backlog", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		recorder := CreateTestRecorder(t, redisContainer.Addr)
		defer recorder.Close(ctx)

		backlog, err := recorder.FailedBacklog(ctx)
		require.NoError(t, err)
		assert.Empty(t, backlog)
	})
}
