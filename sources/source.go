package sources

import (
	"fmt"
	"time"

	"github.com/schedkit/webhook-relay/config"
)

/* Source describes one inbound webhook provider: how to find its signature
 * and timestamp headers and which secret signs its requests.
 */
type Source struct {
	Tag             string
	SignatureHeader string
	TimestampHeader string
	SigningSecret   string
	MaxAge          time.Duration
}

// Validate checks if the source configuration is usable.
// An empty signing secret is allowed here: the verifier rejects at request
// time so a misconfigured source fails requests instead of startup.
func (s *Source) Validate() error {
	if s.Tag == "" {
		return fmt.Errorf("tag cannot be empty")
	}
	if s.SignatureHeader == "" {
		return fmt.Errorf("signature_header cannot be empty for source %s", s.Tag)
	}
	if s.TimestampHeader == "" {
		return fmt.Errorf("timestamp_header cannot be empty for source %s", s.Tag)
	}
	if s.MaxAge < 0 {
		return fmt.Errorf("max_age_seconds cannot be negative for source %s", s.Tag)
	}
	return nil
}

// Default builds the built-in "resend" source from the environment config.
func Default(cfg *config.Config) *Source {
	return &Source{
		Tag:             "resend",
		SignatureHeader: cfg.SignatureHeader,
		TimestampHeader: cfg.TimestampHeader,
		SigningSecret:   cfg.SigningSecret,
		MaxAge:          cfg.MaxAge(),
	}
}
