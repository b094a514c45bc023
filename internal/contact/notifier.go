package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/ashureev/portfolio-assistant/internal/config"
)

// ErrNotifierDisabled is returned when SMTP credentials are not configured.
var ErrNotifierDisabled = errors.New("email credentials not configured")

// Notifier tells the site owner about a new submission.
type Notifier interface {
	Notify(ctx context.Context, c Contact) error
}

// SMTPNotifier sends notifications over authenticated SMTP with STARTTLS.
type SMTPNotifier struct {
	cfg config.SMTPConfig
}

var _ Notifier = (*SMTPNotifier)(nil)

// NewSMTPNotifier creates an SMTP notifier.
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// Notify sends one plain-text notification for c.
func (n *SMTPNotifier) Notify(ctx context.Context, c Contact) error {
	if !n.cfg.Enabled() {
		return ErrNotifierDisabled
	}

	msg, err := n.buildMessage(c)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.User),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if n.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(n.cfg.Timeout))
	}

	client, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) buildMessage(c Contact) (*mail.Msg, error) {
	recipient := n.cfg.Recipient
	if recipient == "" {
		recipient = n.cfg.User
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.User); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	if err := msg.ReplyTo(c.Email); err != nil {
		return nil, fmt.Errorf("set reply-to: %w", err)
	}
	msg.Subject(notificationSubject(c))
	msg.SetBodyString(mail.TypeTextPlain, notificationBody(c))
	return msg, nil
}

func notificationSubject(c Contact) string {
	return "New Portfolio Contact: " + c.Subject
}

func notificationBody(c Contact) string {
	var b strings.Builder
	b.WriteString("You have received a new message from your portfolio website.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", c.Name)
	fmt.Fprintf(&b, "Email: %s\n", c.Email)
	fmt.Fprintf(&b, "Phone: %s\n", orNA(c.Phone))
	if c.Company != nil {
		fmt.Fprintf(&b, "Company: %s\n", *c.Company)
	}
	fmt.Fprintf(&b, "Subject: %s\n", c.Subject)
	if c.ProjectType != nil {
		fmt.Fprintf(&b, "Project type: %s\n", *c.ProjectType)
	}
	if c.Budget != nil {
		fmt.Fprintf(&b, "Budget: %s\n", *c.Budget)
	}
	if c.Timeline != nil {
		fmt.Fprintf(&b, "Timeline: %s\n", *c.Timeline)
	}
	fmt.Fprintf(&b, "\nMessage:\n%s\n", c.Message)
	return b.String()
}

func orNA(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}
