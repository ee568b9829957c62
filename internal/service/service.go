// Package service holds the authentication, authorization and scope
// workflows. Persistence is reached through the store interfaces below.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Skotchmaster/scope_auth/internal/events"
	"github.com/Skotchmaster/scope_auth/internal/models"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type ScopeStore interface {
	CreateScope(ctx context.Context, name string) (*models.Scope, error)
	GetScope(ctx context.Context, id uint) (*models.Scope, error)
	ListScopes(ctx context.Context) ([]models.Scope, error)
	DeleteScope(ctx context.Context, id uint) (*models.Scope, error)
	AssignScope(ctx context.Context, userID, scopeID uint) (*models.User, error)
	UnassignScope(ctx context.Context, userID, scopeID uint) (*models.User, error)
}

type actorKey struct{}

// WithActor marks ctx as acting on behalf of the user with id.
func WithActor(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

// ActorFrom returns the id set by WithActor, or 0.
func ActorFrom(ctx context.Context) uint {
	id, _ := ctx.Value(actorKey{}).(uint)
	return id
}

// publish never fails the caller; a lost audit event is only logged.
func publish(ctx context.Context, l *slog.Logger, p events.Publisher, topic string, e events.Event) {
	if p == nil {
		return
	}
	e.At = time.Now().UTC()
	if e.ActorID == 0 {
		e.ActorID = ActorFrom(ctx)
	}
	if err := p.PublishEvent(ctx, topic, e); err != nil {
		l.Warn("event_publish_failed", "topic", topic, "type", e.Type, "error", err)
	}
}
