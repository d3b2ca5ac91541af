// Package notification delivers out-of-range alerts by email.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/coldchain-go/coldchain/internal/errors"
)

// Type represents the kind of a notification
type Type string

const (
	// TypeAlert is an out-of-range temperature alert
	TypeAlert Type = "alert"
	// TypeTest is an operator-triggered test message
	TypeTest Type = "test"
)

// Priority represents the urgency level of a notification
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityLow      Priority = "low"
)

// ErrNotConfigured is returned when an alert is due but email delivery is disabled.
var ErrNotConfigured = errors.NewStd("email alerts are not configured")

// Notification is one message addressed to one recipient.
type Notification struct {
	ID        string
	Type      Type
	Priority  Priority
	Title     string
	Message   string
	Recipient string
	Timestamp time.Time
}

// NewNotification creates a notification with a fresh ID.
func NewNotification(t Type, priority Priority, title, message, recipient string) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		Type:      t,
		Priority:  priority,
		Title:     title,
		Message:   message,
		Recipient: recipient,
		Timestamp: time.Now(),
	}
}

// Provider defines a delivery backend. Implementations must be safe for concurrent use.
type Provider interface {
	GetName() string
	ValidateConfig() error
	Send(ctx context.Context, n *Notification) error
	SupportsType(notifType Type) bool
	IsEnabled() bool
}
