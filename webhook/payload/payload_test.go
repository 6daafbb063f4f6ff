package payload_test

import (
	"testing"

	"github.com/schedkit/webhook-relay/webhook/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) any {
	t.Helper()
	decoded, err := payload.Decode([]byte(body))
	require.NoError(t, err)
	return decoded
}

func TestDecode(t *testing.T) {
	t.Run("success - valid JSON", func(t *testing.T) {
		decoded, err := payload.Decode([]byte(`{"type":"email.sent"}`))
		require.NoError(t, err)
		assert.NotNil(t, decoded)
	})

	t.Run("error - not JSON", func(t *testing.T) {
		_, err := payload.Decode([]byte("not json"))
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := `{"type":"email.sent","created_at":"2024-06-01T12:00:00Z","data":{"id":"msg_1","from":"a@example.com","to":["b@example.com"],"subject":"hi"}}`

	t.Run("success - complete payload", func(t *testing.T) {
		err := payload.Validate(decode(t, valid))
		require.NoError(t, err)
	})

	t.Run("success - every known event type", func(t *testing.T) {
		for _, eventType := range payload.EventTypes {
			body := `{"type":"` + string(eventType) + `","data":{"id":"1","from":"a","to":"b"}}`
			err := payload.Validate(decode(t, body))
			require.NoError(t, err, "event type %s should validate", eventType)
		}
	})

	t.Run("error - not an object", func(t *testing.T) {
		for _, body := range []string{`[1,2,3]`, `"string"`, `42`, `null`, `true`} {
			err := payload.Validate(decode(t, body))
			require.Error(t, err, "body %s should be rejected", body)
			assert.Contains(t, err.Error(), "not an object")
		}
	})

	t.Run("error - missing type", func(t *testing.T) {
		err := payload.Validate(decode(t, `{"data":{"id":"1","from":"a","to":"b"}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing required field: type")
	})

	t.Run("error - missing data", func(t *testing.T) {
		err := payload.Validate(decode(t, `{"type":"email.sent"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing required field: data")
	})

	t.Run("error - missing data.id", func(t *testing.T) {
		err := payload.Validate(decode(t, `{"type":"email.sent","data":{"from":"a","to":"b"}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing required field: data.id")
	})

	t.Run("error - missing data.from", func(t *testing.T) {
		err := payload.Validate(decode(t, `{"type":"email.sent","data":{"id":"1","to":"b"}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing required field: data.from")
	})

	t.Run("error - missing data.to", func(t *testing.T) {
		err := payload.Validate(decode(t, `{"type":"email.sent","data":{"id":"1","from":"a"}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing required field: data.to")
	})

	t.Run("error - first missing field wins", func(t *testing.T) {
		// type and data are both absent; the type check runs first
		err := payload.Validate(decode(t, `{}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing required field: type")
	})

	t.Run("error - unknown event type lists valid values", func(t *testing.T) {
		err := payload.Validate(decode(t, `{"type":"email.exploded","data":{"id":"1","from":"a","to":"b"}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid event type")
		assert.Contains(t, err.Error(), "email.exploded")
		for _, eventType := range payload.EventTypes {
			assert.Contains(t, err.Error(), string(eventType))
		}
	})

	t.Run("error - non-string type", func(t *testing.T) {
		err := payload.Validate(decode(t, `{"type":42,"data":{"id":"1","from":"a","to":"b"}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid event type")
	})
}

func TestParse(t *testing.T) {
	t.Run("success - array recipients", func(t *testing.T) {
		event, err := payload.Parse([]byte(`{"type":"email.sent","data":{"id":"1","from":"a","to":["b","c"]}}`))
		require.NoError(t, err)
		assert.Equal(t, payload.EmailSent, event.Type)
		assert.Equal(t, payload.RecipientList{"b", "c"}, event.Data.To)
	})

	t.Run("success - single string recipient is wrapped", func(t *testing.T) {
		event, err := payload.Parse([]byte(`{"type":"email.sent","data":{"id":"1","from":"a","to":"b@example.com"}}`))
		require.NoError(t, err)
		assert.Equal(t, payload.RecipientList{"b@example.com"}, event.Data.To)
	})

	t.Run("success - bounce details", func(t *testing.T) {
		body := `{"type":"email.bounced","data":{"id":"1","from":"a","to":"b","bounce":{"code":"550","description":"mailbox unavailable"}}}`
		event, err := payload.Parse([]byte(body))
		require.NoError(t, err)
		require.NotNil(t, event.Data.Bounce)
		assert.Equal(t, "550", event.Data.Bounce.Code)
		assert.Equal(t, "mailbox unavailable", event.Data.Bounce.Description)
	})

	t.Run("success - click details", func(t *testing.T) {
		body := `{"type":"email.clicked","data":{"id":"1","from":"a","to":"b","email":{"ip_address":"1.2.3.4","user_agent":"curl","url":"https://example.com"}}}`
		event, err := payload.Parse([]byte(body))
		require.NoError(t, err)
		require.NotNil(t, event.Data.Email)
		assert.Equal(t, "https://example.com", event.Data.Email.URL)
	})

	t.Run("error - numeric recipients", func(t *testing.T) {
		_, err := payload.Parse([]byte(`{"type":"email.sent","data":{"id":"1","from":"a","to":42}}`))
		require.Error(t, err)
	})
}

func TestTypeOf(t *testing.T) {
	t.Run("returns type when present", func(t *testing.T) {
		assert.Equal(t, "email.sent", payload.TypeOf(decode(t, `{"type":"email.sent"}`)))
	})

	t.Run("returns unknown otherwise", func(t *testing.T) {
		assert.Equal(t, "unknown", payload.TypeOf(decode(t, `{}`)))
		assert.Equal(t, "unknown", payload.TypeOf(decode(t, `[1]`)))
		assert.Equal(t, "unknown", payload.TypeOf(decode(t, `{"type":7}`)))
	})
}
