package contact

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/ashureev/portfolio-assistant/internal/shared"
)

const defaultNotifyTimeout = 30 * time.Second

// Service validates submissions, stores them and notifies the owner.
// Storage is the only success criterion; notification runs in the
// background and its outcome is only logged.
type Service struct {
	repo          Repository
	notifier      Notifier
	notifyTimeout time.Duration
	notifications conc.WaitGroup
}

// NewService creates a contact service. notifyTimeout bounds each
// background notification; zero uses a default.
func NewService(repo Repository, notifier Notifier, notifyTimeout time.Duration) *Service {
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	return &Service{repo: repo, notifier: notifier, notifyTimeout: notifyTimeout}
}

// Validate trims s and reports every violated field at once.
func Validate(s Submission) (Submission, error) {
	s = Submission{
		Name:        strings.TrimSpace(s.Name),
		Email:       strings.TrimSpace(s.Email),
		Phone:       strings.TrimSpace(s.Phone),
		Company:     strings.TrimSpace(s.Company),
		Subject:     strings.TrimSpace(s.Subject),
		ProjectType: strings.TrimSpace(s.ProjectType),
		Budget:      strings.TrimSpace(s.Budget),
		Timeline:    strings.TrimSpace(s.Timeline),
		Message:     strings.TrimSpace(s.Message),
	}

	var problems []string
	if s.Name == "" {
		problems = append(problems, "name is required")
	}
	switch {
	case s.Email == "":
		problems = append(problems, "email is required")
	case !validEmail(s.Email):
		problems = append(problems, "email is not a valid address")
	}
	if s.Subject == "" {
		problems = append(problems, "subject is required")
	}
	if s.Message == "" {
		problems = append(problems, "message is required")
	}

	if len(problems) > 0 {
		return s, shared.Validation(strings.Join(problems, "; "))
	}
	return s, nil
}

// validEmail accepts a bare addr-spec with a dotted domain.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

// Submit validates and stores sub, then schedules a notification. The
// notification never affects the returned result.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Contact, error) {
	sub, err := Validate(sub)
	if err != nil {
		return nil, err
	}

	c := &Contact{
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       optional(sub.Phone),
		Company:     optional(sub.Company),
		Subject:     sub.Subject,
		ProjectType: optional(sub.ProjectType),
		Budget:      optional(sub.Budget),
		Timeline:    optional(sub.Timeline),
		Message:     sub.Message,
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		slog.Error("Failed to save contact", "email", c.Email, "error", err)
		return nil, err
	}
	slog.Info("Contact saved", "contact_id", c.ID)

	saved := *c
	notifyCtx := context.WithoutCancel(ctx)
	s.notifications.Go(func() {
		s.notify(notifyCtx, saved)
	})

	return c, nil
}

func (s *Service) notify(ctx context.Context, c Contact) {
	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	err := s.notifier.Notify(ctx, c)
	switch {
	case err == nil:
		slog.Info("Contact notification sent", "contact_id", c.ID)
	case errors.Is(err, ErrNotifierDisabled):
		slog.Warn("Email credentials not set, skipping contact notification", "contact_id", c.ID)
	default:
		slog.Warn("Contact saved but email notification failed", "contact_id", c.ID, "error", err)
	}
}

// List returns up to limit stored submissions, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Contact, error) {
	return s.repo.List(ctx, limit)
}

// Close waits for in-flight notifications. A panicking notifier is logged
// rather than propagated.
func (s *Service) Close() {
	if r := s.notifications.WaitAndRecover(); r != nil {
		slog.Error("Contact notification panicked", "panic", r.Value, "stack", string(r.Stack))
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
