package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/portfolio-assistant/internal/config"
)

func TestSMTPNotifierDisabledWithoutCredentials(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{Host: "smtp.example.com", Port: 587, User: "owner@example.com"})
	err := n.Notify(context.Background(), Contact{Name: "a", Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrNotifierDisabled)
}

func TestNotificationBody(t *testing.T) {
	company := "Acme"
	c := Contact{
		Name:    "Ada",
		Email:   "ada@example.com",
		Company: &company,
		Subject: "Hello",
		Message: "Let's talk.",
	}

	body := notificationBody(c)
	assert.Contains(t, body, "Name: Ada")
	assert.Contains(t, body, "Phone: N/A")
	assert.Contains(t, body, "Company: Acme")
	assert.NotContains(t, body, "Budget:")
	assert.Contains(t, body, "Message:\nLet's talk.")
	assert.Equal(t, "New Portfolio Contact: Hello", notificationSubject(c))
}

func TestBuildMessageUsesRecipientFallback(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{User: "owner@example.com", Password: "pw"})
	msg, err := n.buildMessage(Contact{Email: "visitor@example.com", Subject: "s"})
	require.NoError(t, err)

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"owner@example.com"}, rcpts)
}
