package call

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a call ID has no stored state.
	ErrNotFound = errors.New("call not found")

	// ErrInvalidRequest wraps caller-input validation failures.
	ErrInvalidRequest = errors.New("invalid request")
)

/* Repository is the key-value storage boundary for call state.
 * Small, focused interface written for users of the API, not just for testing.
 */
type Repository interface {
	Get(ctx context.Context, id string) (Call, error)
	/* Save stores the call state. A zero ttl means no expiration;
	 * a positive ttl lets terminal records clean themselves up.
	 */
	Save(ctx context.Context, c Call, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	// List returns every stored call, via prefix scan in the kv store
	List(ctx context.Context) ([]Call, error)
	Close(ctx context.Context) error
}

/* Provider is the third-party calling API boundary.
 * Operations are keyed by the provider's own call identifier.
 */
type Provider interface {
	Schedule(ctx context.Context, phone string, at time.Time) (string, error)
	Reschedule(ctx context.Context, providerCallID string, at time.Time) error
	Cancel(ctx context.Context, providerCallID string) error
	Status(ctx context.Context, providerCallID string) (Status, error)
}

// Email is an outbound message handed to the Mailer.
type Email struct {
	To         string
	Subject    string
	HTML       string
	Text       string
	Attachment *Attachment
}

// Attachment is an opaque file attached to an email, typically a calendar invite.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Mailer is the email-sending boundary.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

/* InviteBuilder produces a calendar attachment for a scheduled call.
 * Calendar serialization lives behind this boundary; the service only
 * attaches whatever the builder returns.
 */
type InviteBuilder interface {
	Invite(c Call) (Attachment, error)
}
