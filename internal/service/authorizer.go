package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/scope_auth/internal/domain"
	"github.com/Skotchmaster/scope_auth/internal/models"
	"github.com/Skotchmaster/scope_auth/internal/tokens"
)

type Authorizer struct {
	Users  UserStore
	Tokens *tokens.Codec
}

// Guard rejects a user that lacks some required permission.
type Guard func(user *models.User) error

// CurrentUser resolves a bearer token to the stored user with scopes loaded.
func (a *Authorizer) CurrentUser(ctx context.Context, bearer string) (*models.User, error) {
	if bearer == "" {
		return nil, domain.Unauthorized(nil, "Not authenticated")
	}

	id, err := a.Tokens.Decode(bearer)
	if err != nil {
		return nil, err
	}

	user, err := a.Users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrMissing) {
			return nil, domain.Unauthorized(err, "Could not validate credentials")
		}
		return nil, err
	}
	return user, nil
}

func (a *Authorizer) CurrentActiveUser(user *models.User) (*models.User, error) {
	if user.Disabled {
		return nil, domain.BadRequest("Inactive User")
	}
	return user, nil
}

func (a *Authorizer) RequireAllScopes(scopes ...string) Guard {
	required := append([]string(nil), scopes...)
	return func(user *models.User) error {
		if !HasAllScopes(user, required...) {
			return domain.Unauthorized(nil, "Not enough permissions")
		}
		return nil
	}
}

func HasAllScopes(user *models.User, scopes ...string) bool {
	held := user.ScopeNames()
	for _, s := range scopes {
		if _, ok := held[s]; !ok {
			return false
		}
	}
	return true
}

// AnyOfScopes reports whether user holds at least one of scopes. An empty
// request set never matches.
func AnyOfScopes(user *models.User, scopes ...string) bool {
	held := user.ScopeNames()
	for _, s := range scopes {
		if _, ok := held[s]; ok {
			return true
		}
	}
	return false
}
