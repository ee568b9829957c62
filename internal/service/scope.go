package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Skotchmaster/scope_auth/internal/domain"
	"github.com/Skotchmaster/scope_auth/internal/events"
	"github.com/Skotchmaster/scope_auth/internal/logging"
	"github.com/Skotchmaster/scope_auth/internal/models"
	"github.com/Skotchmaster/scope_auth/internal/repo"
)

type ScopeService struct {
	Repo   ScopeStore
	Events events.Publisher
}

func (s *ScopeService) CreateScope(ctx context.Context, name string) (*models.Scope, error) {
	l := logging.FromContext(ctx).With("svc", "scope.create", "scope_name", name)

	if strings.TrimSpace(name) == "" {
		l.Warn("create_scope_failed", "status", 422, "reason", "blank name")
		return nil, domain.Validation("Field required: name")
	}

	scope, err := s.Repo.CreateScope(ctx, name)
	if err != nil {
		logFailure(l, "create_scope_failed", err)
		return nil, err
	}

	publish(ctx, l, s.Events, events.TopicScopes, events.Event{
		Type: events.ScopeCreated, ScopeID: scope.ID, ScopeName: scope.Name,
	})
	l.Info("create_scope_successful", "scope_id", scope.ID)
	return scope, nil
}

func (s *ScopeService) GetScope(ctx context.Context, id uint) (*models.Scope, error) {
	return s.Repo.GetScope(ctx, id)
}

func (s *ScopeService) ListScopes(ctx context.Context) ([]models.Scope, error) {
	return s.Repo.ListScopes(ctx)
}

func (s *ScopeService) DeleteScope(ctx context.Context, id uint) (*models.Scope, error) {
	l := logging.FromContext(ctx).With("svc", "scope.delete", "scope_id", id)

	scope, err := s.Repo.DeleteScope(ctx, id)
	if err != nil {
		logFailure(l, "delete_scope_failed", err)
		return nil, err
	}

	publish(ctx, l, s.Events, events.TopicScopes, events.Event{
		Type: events.ScopeDeleted, ScopeID: scope.ID, ScopeName: scope.Name,
	})
	l.Info("delete_scope_successful")
	return scope, nil
}

func (s *ScopeService) AssignScope(ctx context.Context, userID, scopeID uint) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "scope.assign", "user_id", userID, "scope_id", scopeID)

	user, err := s.Repo.AssignScope(ctx, userID, scopeID)
	if err != nil {
		logFailure(l, "assign_scope_failed", err)
		return nil, err
	}

	publish(ctx, l, s.Events, events.TopicScopes, events.Event{
		Type: events.ScopeAssigned, UserID: userID, ScopeID: scopeID,
	})
	l.Info("assign_scope_successful")
	return user, nil
}

func (s *ScopeService) UnassignScope(ctx context.Context, userID, scopeID uint) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "scope.unassign", "user_id", userID, "scope_id", scopeID)

	user, err := s.Repo.UnassignScope(ctx, userID, scopeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotAssigned) {
			l.Warn("unassign_scope_failed", "status", 403, "reason", "scope not assigned")
		} else {
			logFailure(l, "unassign_scope_failed", err)
		}
		return nil, err
	}

	publish(ctx, l, s.Events, events.TopicScopes, events.Event{
		Type: events.ScopeUnassigned, UserID: userID, ScopeID: scopeID,
	})
	l.Info("unassign_scope_successful")
	return user, nil
}

func logFailure(l *slog.Logger, event string, err error) {
	switch {
	case errors.Is(err, domain.ErrMissing):
		l.Warn(event, "status", 403, "reason", domain.Detail(err, "not found"))
	case errors.Is(err, domain.ErrDuplicate):
		l.Warn(event, "status", 403, "reason", domain.Detail(err, "already exists"))
	default:
		l.Error(event, "status", 500, "error", err)
	}
}
