package call

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the business operations for call scheduling
type UseCase interface {
	Schedule(ctx context.Context, req ScheduleRequest) (Call, error)
	Reschedule(ctx context.Context, id string, at time.Time) (Call, error)
	Cancel(ctx context.Context, id string) error
	GetStatus(ctx context.Context, id string) (Call, error)
}

// ScheduleRequest carries the caller-supplied fields for a new call.
type ScheduleRequest struct {
	Phone string
	Email string
	Name  string
	At    time.Time
}

func (r ScheduleRequest) validate(now time.Time) error {
	if r.Phone == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidRequest)
	}
	if r.Email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}
	if !r.At.After(now) {
		return fmt.Errorf("%w: scheduled time must be in the future", ErrInvalidRequest)
	}
	return nil
}

type Service struct {
	repo     Repository
	provider Provider
	mailer   Mailer
	invites  InviteBuilder
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a new call service with dependency injection.
// invites may be nil; confirmation emails are then sent without an attachment.
func NewService(repo Repository, provider Provider, mailer Mailer, invites InviteBuilder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		mailer:   mailer,
		invites:  invites,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the wall-clock read, for deterministic tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Schedule books a call with the provider, persists its state, and emails a
// confirmation with the calendar invite attached.
func (s *Service) Schedule(ctx context.Context, req ScheduleRequest) (Call, error) {
	if err := req.validate(s.now()); err != nil {
		return Call{}, fmt.Errorf("validating schedule request: %w", err)
	}

	providerCallID, err := s.provider.Schedule(ctx, req.Phone, req.At)
	if err != nil {
		return Call{}, fmt.Errorf("scheduling call with provider: %w", err)
	}

	c := Call{
		ID:             uuid.New().String(),
		Phone:          req.Phone,
		Email:          req.Email,
		Name:           req.Name,
		ScheduledAt:    req.At,
		ProviderCallID: providerCallID,
		Status:         Scheduled,
		CreatedAt:      s.now(),
		UpdatedAt:      s.now(),
	}

	if err := s.repo.Save(ctx, c, 0); err != nil {
		return Call{}, fmt.Errorf("storing call: %w", err)
	}

	s.sendConfirmation(ctx, c, "Your call is scheduled")
	return c, nil
}

// Reschedule moves an existing call to a new time and re-sends the confirmation.
func (s *Service) Reschedule(ctx context.Context, id string, at time.Time) (Call, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Call{}, fmt.Errorf("getting call: %w", err)
	}
	if c.Status.IsFinal() {
		return Call{}, fmt.Errorf("call %s is already %s", id, c.Status)
	}
	if !at.After(s.now()) {
		return Call{}, fmt.Errorf("%w: scheduled time must be in the future", ErrInvalidRequest)
	}

	if err := s.provider.Reschedule(ctx, c.ProviderCallID, at); err != nil {
		return Call{}, fmt.Errorf("rescheduling call with provider: %w", err)
	}

	c.ScheduledAt = at
	c.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, c, 0); err != nil {
		return Call{}, fmt.Errorf("storing call: %w", err)
	}

	s.sendConfirmation(ctx, c, "Your call has been rescheduled")
	return c, nil
}

// Cancel cancels the call with the provider and marks the record canceled.
func (s *Service) Cancel(ctx context.Context, id string) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("getting call: %w", err)
	}
	if c.Status.IsFinal() {
		return fmt.Errorf("call %s is already %s", id, c.Status)
	}

	if err := s.provider.Cancel(ctx, c.ProviderCallID); err != nil {
		return fmt.Errorf("canceling call with provider: %w", err)
	}

	c.Status = Canceled
	c.UpdatedAt = s.now()
	// Canceled records expire instead of lingering in the store
	if err := s.repo.Save(ctx, c, 24*time.Hour); err != nil {
		return fmt.Errorf("storing call: %w", err)
	}
	return nil
}

// GetStatus returns the stored call, refreshed from the provider when the
// stored status is not terminal.
func (s *Service) GetStatus(ctx context.Context, id string) (Call, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Call{}, fmt.Errorf("getting call: %w", err)
	}
	if c.Status.IsFinal() {
		return c, nil
	}

	status, err := s.provider.Status(ctx, c.ProviderCallID)
	if err != nil {
		// Provider lookup failures degrade to the stored state
		s.logger.Warn().Err(err).Str("call_id", id).Msg("refreshing call status from provider")
		return c, nil
	}
	if status != c.Status {
		c.Status = status
		c.UpdatedAt = s.now()
		if err := s.repo.Save(ctx, c, 0); err != nil {
			return Call{}, fmt.Errorf("storing call: %w", err)
		}
	}
	return c, nil
}

/* sendConfirmation emails the contact. Email failure never fails the
 * scheduling operation; the call is already booked.
 */
func (s *Service) sendConfirmation(ctx context.Context, c Call, subject string) {
	email := Email{
		To:      c.Email,
		Subject: subject,
		HTML: fmt.Sprintf("<p>Hi %s,</p><p>Your call is booked for %s.</p>",
			c.Name, c.ScheduledAt.Format(time.RFC1123)),
		Text: fmt.Sprintf("Hi %s, your call is booked for %s.",
			c.Name, c.ScheduledAt.Format(time.RFC1123)),
	}

	if s.invites != nil {
		attachment, err := s.invites.Invite(c)
		if err != nil {
			s.logger.Warn().Err(err).Str("call_id", c.ID).Msg("building calendar invite")
		} else {
			email.Attachment = &attachment
		}
	}

	if err := s.mailer.Send(ctx, email); err != nil {
		s.logger.Error().Err(err).Str("call_id", c.ID).Msg("sending confirmation email")
	}
}
