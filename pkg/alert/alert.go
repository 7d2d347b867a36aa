// Package alert delivers buzzing-story notifications to Slack, Discord, or a
// generic webhook.
package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/elonfeng/hnpulse/pkg/story"
)

// Notification is the data sent to alert destinations: the stories that
// crossed into Buzzing plus the run they came from.
type Notification struct {
	Title   string        `json:"title"`
	Body    string        `json:"body"`
	RunID   int64         `json:"run_id"`
	Stories []story.Story `json:"stories"`
}

// Notifier delivers alerts to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}

// Manager broadcasts notifications to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new alert manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a notification to all registered notifiers.
func (m *Manager) Broadcast(ctx context.Context, n *Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// storyLine formats one story for a message body.
func storyLine(s story.Story) string {
	return fmt.Sprintf("%s (%d votes, %d comments, ratio %.2f)",
		s.Title, s.Votes, s.Comments, s.EngagementRatio)
}
