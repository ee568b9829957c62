package auth

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/scope_auth/internal/domain"
	"github.com/Skotchmaster/scope_auth/internal/logging"
	"github.com/Skotchmaster/scope_auth/internal/models"
	"github.com/Skotchmaster/scope_auth/internal/service"
)

const UserKey = "user"

type Middleware struct {
	Authz *service.Authorizer
}

func New(authz *service.Authorizer) *Middleware {
	return &Middleware{Authz: authz}
}

// Bearer resolves the Authorization bearer token to the stored user and
// puts it under UserKey.
func (m *Middleware) Bearer() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  UserKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return m.Authz.CurrentUser(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context()).With("mw", "auth.bearer")

			var extractErr *echojwt.TokenExtractionError
			if errors.As(err, &extractErr) || errors.Is(err, echojwt.ErrJWTMissing) {
				l.Warn("auth_failed", "reason", "missing bearer token", "error", err)
				return domain.Unauthorized(err, "Not authenticated")
			}

			var parseErr *echojwt.TokenParsingError
			if errors.As(err, &parseErr) {
				err = parseErr.Err
			}

			var de *domain.Error
			if errors.As(err, &de) {
				l.Warn("auth_failed", "reason", de.Detail, "error", err)
				return de
			}
			// storage failure while loading the user
			l.Error("auth_failed", "status", 500, "error", err)
			return err
		},
	})
}

// RequireActive must run after Bearer. It records the user as the actor of
// whatever the request goes on to change.
func (m *Middleware) RequireActive(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := UserFrom(c)
		if user == nil {
			return domain.Unauthorized(nil, "Not authenticated")
		}
		if _, err := m.Authz.CurrentActiveUser(user); err != nil {
			return err
		}
		req := c.Request()
		c.SetRequest(req.WithContext(service.WithActor(req.Context(), user.ID)))
		return next(c)
	}
}

// RequireScopes admits only users holding every one of scopes.
func (m *Middleware) RequireScopes(scopes ...string) echo.MiddlewareFunc {
	guard := m.Authz.RequireAllScopes(scopes...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFrom(c)
			if user == nil {
				return domain.Unauthorized(nil, "Not authenticated")
			}
			if err := guard(user); err != nil {
				logging.FromContext(c.Request().Context()).Warn("scope_check_failed",
					"status", 401, "user_id", user.ID, "required", scopes)
				return err
			}
			return next(c)
		}
	}
}

// UserFrom returns the user put into the context by Bearer, or nil.
func UserFrom(c echo.Context) *models.User {
	u, _ := c.Get(UserKey).(*models.User)
	return u
}
