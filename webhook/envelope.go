package webhook

/* Envelope is the canonical, provider-agnostic representation of one email
 * event. It is generated fresh per validated payload, immutable once created,
 * and is the unit of work handed to the Forwarder.
 */
type Envelope struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp"`
	Source    string         `json:"source"`
	EventType string         `json:"eventType"`
	EmailID   string         `json:"emailId"`
	EmailData EmailData      `json:"emailData"`
	EventData map[string]any `json:"eventData"`
	Metadata  Metadata       `json:"metadata"`
}

// EmailData is the shared base of every event family.
type EmailData struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	SentAt  string   `json:"sentAt"`
}

type Metadata struct {
	OriginalTimestamp string `json:"originalTimestamp"`
}

// Marker webhook IDs for pipeline failures that happen before an envelope exists.
const (
	WebhookIDInvalidSignature = "invalid_signature"
	WebhookIDInvalidJSON      = "invalid_json"
	WebhookIDInvalidPayload   = "invalid_payload"
	WebhookIDError            = "error"
)

// DeliveryResult is the terminal value of one processing attempt.
type DeliveryResult struct {
	Success    bool   `json:"success"`
	WebhookID  string `json:"webhookId"`
	EventType  string `json:"eventType"`
	Timestamp  int64  `json:"timestamp"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}
