package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/scope_auth/internal/db"
	"github.com/Skotchmaster/scope_auth/internal/logging"
	mwauth "github.com/Skotchmaster/scope_auth/internal/middleware/auth"
)

const (
	ScopeRead   = "scopes:read"
	ScopeCreate = "scopes:create"
	ScopeDelete = "scopes:delete"
	ScopeAssign = "scopes:assign"
)

type Deps struct {
	AuthHandler  *AuthHTTP
	ScopeHandler *ScopeHTTP
	UserHandler  *UserHTTP
	AuthMW       *mwauth.Middleware
	DB           *gorm.DB
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := db.Ping(ctx, d.DB); err != nil {
			logging.FromContext(ctx).Error("readiness_failed", "error", err)
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.NoContent(http.StatusOK)
	})

	active := []echo.MiddlewareFunc{d.AuthMW.Bearer(), d.AuthMW.RequireActive}

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/token", d.AuthHandler.Token)
	auth.POST("/refresh", d.AuthHandler.Refresh, active...)

	user := e.Group("/user", active...)
	user.GET("/me", d.UserHandler.Me)

	scope := e.Group("/scope", active...)
	scope.GET("", d.ScopeHandler.List, d.AuthMW.RequireScopes(ScopeRead))
	scope.POST("", d.ScopeHandler.Create, d.AuthMW.RequireScopes(ScopeCreate))
	scope.DELETE("/:id", d.ScopeHandler.Delete, d.AuthMW.RequireScopes(ScopeDelete))
	scope.PATCH("/assign/:scope_id/user/:user_id", d.ScopeHandler.Assign, d.AuthMW.RequireScopes(ScopeAssign))
	scope.PATCH("/unassign/:scope_id/user/:user_id", d.ScopeHandler.Unassign, d.AuthMW.RequireScopes(ScopeAssign))
}
