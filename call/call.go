package call

import (
	"fmt"
	"time"
)

/* Call represents a scheduled outbound phone call
 * Uses value semantics as it represents data, not behavior
 */
type Call struct {
	ID             string
	Phone          string
	Email          string
	Name           string
	ScheduledAt    time.Time
	ProviderCallID string
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

/* Status represents the current state of a scheduled call
 * Follows the lifecycle: Scheduled -> InProgress -> Completed/Failed, or Canceled
 */
type Status int

const (
	Scheduled Status = iota + 1
	InProgress
	Completed
	Canceled
	Failed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	case Canceled:
		return "canceled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// NewStatus creates a Status from a string
func NewStatus(str string) Status {
	switch str {
	case "scheduled":
		return Scheduled
	case "in_progress":
		return InProgress
	case "completed":
		return Completed
	case "canceled":
		return Canceled
	case "failed":
		return Failed
	default:
		return Scheduled
	}
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Scheduled || s > Failed {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}

// IsFinal returns true if the status is a terminal state
func (s Status) IsFinal() bool {
	return s == Completed || s == Canceled || s == Failed
}
