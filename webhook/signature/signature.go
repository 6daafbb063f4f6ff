package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// SignatureVersion is the version tag the verifier looks for in the header
	SignatureVersion = "v1"

	// DefaultMaxAge is the replay-protection window applied when none is configured
	DefaultMaxAge = 300 * time.Second
)

/* Verifier validates inbound webhook authenticity and freshness.
 * The signed content is "{timestamp}.{payload}" and the signature header is a
 * flat comma-separated list of version/value pairs: "v1,<hex>,v2,<hex>".
 */
type Verifier struct {
	secret string
	maxAge time.Duration
	now    func() time.Time
}

// NewVerifier creates a verifier for the given shared secret and replay window.
// A non-positive maxAge falls back to DefaultMaxAge.
func NewVerifier(secret string, maxAge time.Duration) *Verifier {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Verifier{
		secret: secret,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// WithClock replaces the wall-clock read, for deterministic tests.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

/* Verify checks the signature and timestamp headers against the raw payload.
 * A nil return means the webhook is authentic and fresh. Verify never panics:
 * any unexpected failure surfaces as an error value.
 */
func (v *Verifier) Verify(payload []byte, signatureHeader, timestampHeader string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("error verifying signature: %v", r)
		}
	}()

	// Fail fast before doing any crypto
	if len(payload) == 0 || signatureHeader == "" || timestampHeader == "" {
		return fmt.Errorf("missing payload, signature, or timestamp")
	}

	timestamp, parseErr := strconv.ParseInt(timestampHeader, 10, 64)
	if parseErr != nil {
		return fmt.Errorf("invalid timestamp format")
	}

	age := v.now().Unix() - timestamp
	if age > int64(v.maxAge.Seconds()) {
		return fmt.Errorf("webhook timestamp too old: age %ds exceeds maximum %ds", age, int64(v.maxAge.Seconds()))
	}

	// A missing secret must reject, never silently pass
	if v.secret == "" {
		return fmt.Errorf("signing secret not configured")
	}

	provided, found := extractSignature(signatureHeader)
	if !found {
		return fmt.Errorf("no %s signature found in header", SignatureVersion)
	}

	expected := Sign(v.secret, timestamp, payload)

	/* Constant-time comparison over the hex strings. ConstantTimeCompare
	 * rejects on length mismatch without leaking where the values differ.
	 */
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(provided))) != 1 {
		return fmt.Errorf("signature mismatch")
	}

	return nil
}

// Sign computes the lowercase hex HMAC-SHA256 of "{timestamp}.{payload}".
// Exported so tests and outbound callers can produce valid headers.
func Sign(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildHeader formats a signature header value in the flat pair format.
func BuildHeader(sig string) string {
	return SignatureVersion + "," + sig
}

/* extractSignature scans the flat pair list for the first v1 entry.
 * Entries beyond an unpaired trailing tag are ignored.
 */
func extractSignature(header string) (string, bool) {
	parts := strings.Split(header, ",")
	for i := 0; i+1 < len(parts); i += 2 {
		if strings.TrimSpace(parts[i]) == SignatureVersion {
			return strings.TrimSpace(parts[i+1]), true
		}
	}
	return "", false
}
