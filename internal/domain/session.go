// Package domain contains core domain types shared by the session store and the agent.
package domain

import (
	"time"
)

// DefaultSessionID is used when a caller does not name a session. Every
// anonymous caller lands in the same conversation.
const DefaultSessionID = "default_session"

// Role tags the author of a turn.
type Role string

const (
	// RoleUser marks a visitor message.
	RoleUser Role = "user"
	// RoleAssistant marks a model reply.
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is one role-tagged message within a session.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn returns a turn stamped with the current time.
func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// ResolveSessionID returns requested verbatim when it is non-empty and
// DefaultSessionID otherwise.
func ResolveSessionID(requested string) string {
	if requested == "" {
		return DefaultSessionID
	}
	return requested
}
