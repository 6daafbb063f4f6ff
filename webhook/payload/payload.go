package payload

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventType is the provider's event discriminator, e.g. "email.sent".
type EventType string

const (
	EmailSent            EventType = "email.sent"
	EmailDelivered       EventType = "email.delivered"
	EmailDeliveryDelayed EventType = "email.delivery_delayed"
	EmailComplained      EventType = "email.complained"
	EmailBounced         EventType = "email.bounced"
	EmailOpened          EventType = "email.opened"
	EmailClicked         EventType = "email.clicked"
)

// EventTypes lists every supported inbound event type.
var EventTypes = []EventType{
	EmailSent,
	EmailDelivered,
	EmailDeliveryDelayed,
	EmailComplained,
	EmailBounced,
	EmailOpened,
	EmailClicked,
}

// Valid reports whether the event type is one of the supported values.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

/* Event is the provider-shaped webhook payload: a discriminated union on Type
 * with a shared Data base plus family-specific sub-objects.
 */
type Event struct {
	Type      EventType `json:"type"`
	CreatedAt string    `json:"created_at"`
	Data      EventData `json:"data"`
}

type EventData struct {
	ID        string        `json:"id"`
	From      string        `json:"from"`
	To        RecipientList `json:"to"`
	Subject   string        `json:"subject"`
	CreatedAt string        `json:"created_at"`
	Bounce    *BounceData   `json:"bounce,omitempty"`
	Email     *EmailMeta    `json:"email,omitempty"`
}

// BounceData carries the provider's bounce details on "email.bounced" events.
type BounceData struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// EmailMeta carries engagement details on "email.opened" and "email.clicked" events.
type EmailMeta struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	URL       string `json:"url,omitempty"`
}

/* RecipientList accepts either a JSON string or an array of strings.
 * The provider sends a bare string for single-recipient messages.
 */
type RecipientList []string

func (r *RecipientList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = RecipientList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("unmarshaling recipients: %w", err)
	}
	*r = RecipientList(many)
	return nil
}

// Decode parses the raw body as JSON. A non-nil error means the body is not
// valid JSON at all; structural problems are left to Validate.
func Decode(body []byte) (any, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshaling payload: %w", err)
	}
	return decoded, nil
}

/* Validate structurally checks a decoded JSON value against the expected
 * payload shape. Checks run in a fixed order and short-circuit on the first
 * failure. It is total: any decoded value yields a result, never a panic.
 */
func Validate(decoded any) error {
	obj, ok := decoded.(map[string]any)
	if !ok {
		return fmt.Errorf("payload is not an object")
	}

	eventType, ok := obj["type"]
	if !ok {
		return fmt.Errorf("missing required field: type")
	}

	data, ok := obj["data"].(map[string]any)
	if !ok {
		return fmt.Errorf("missing required field: data")
	}
	for _, field := range []string{"id", "from", "to"} {
		if _, ok := data[field]; !ok {
			return fmt.Errorf("missing required field: data.%s", field)
		}
	}

	typeStr, _ := eventType.(string)
	if !EventType(typeStr).Valid() {
		return fmt.Errorf("invalid event type: %q (valid types: %s)", eventType, joinEventTypes())
	}

	return nil
}

// TypeOf extracts the event type from a decoded payload, or "unknown" when
// the value does not carry a usable type field.
func TypeOf(decoded any) string {
	if obj, ok := decoded.(map[string]any); ok {
		if t, ok := obj["type"].(string); ok && t != "" {
			return t
		}
	}
	return "unknown"
}

// Parse decodes a structurally valid body into the typed Event.
// Callers are expected to run Decode and Validate first.
func Parse(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, fmt.Errorf("unmarshaling event: %w", err)
	}
	return event, nil
}

func joinEventTypes() string {
	names := make([]string, len(EventTypes))
	for i, t := range EventTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
