// Package events describes the audit events the service emits and the
// publishers they can be sent through.
package events

import (
	"context"
	"errors"
	"strconv"
	"time"
)

const (
	TopicUsers  = "user_events"
	TopicScopes = "scope_events"
)

const (
	UserRegistered = "user_registered"
	UserLoggedIn   = "user_logged_in"
	TokenRefreshed = "token_refreshed"

	ScopeCreated    = "scope_created"
	ScopeDeleted    = "scope_deleted"
	ScopeAssigned   = "scope_assigned"
	ScopeUnassigned = "scope_unassigned"
)

type Event struct {
	Type      string    `json:"type"`
	UserID    uint      `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	ScopeID   uint      `json:"scope_id,omitempty"`
	ScopeName string    `json:"scope_name,omitempty"`
	ActorID   uint      `json:"actor_id,omitempty"`
	At        time.Time `json:"at"`
}

// Key is the partition key: events about one user stay ordered.
func (e Event) Key() string {
	if e.UserID != 0 {
		return strconv.FormatUint(uint64(e.UserID), 10)
	}
	return strconv.FormatUint(uint64(e.ScopeID), 10)
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic string, event Event) error
}

type Nop struct{}

func (Nop) PublishEvent(context.Context, string, Event) error { return nil }

// Multi sends every event to all publishers and joins their errors.
type Multi []Publisher

func (m Multi) PublishEvent(ctx context.Context, topic string, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishEvent(ctx, topic, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
