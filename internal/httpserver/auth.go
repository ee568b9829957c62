package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/scope_auth/internal/domain"
	"github.com/Skotchmaster/scope_auth/internal/logging"
	mwauth "github.com/Skotchmaster/scope_auth/internal/middleware/auth"
	"github.com/Skotchmaster/scope_auth/internal/models"
	"github.com/Skotchmaster/scope_auth/internal/service"
	"github.com/Skotchmaster/scope_auth/internal/transport"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req models.NewUser
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 422, "reason", "invalid body", "error", err)
		return httpError(domain.Validation("Invalid request body"), http.StatusUnauthorized)
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return httpError(err, http.StatusUnauthorized)
	}

	return c.JSON(http.StatusCreated, user)
}

// Token exchanges form credentials for an access token and sets the refresh
// token as an HttpOnly cookie.
func (h *AuthHTTP) Token(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.token")

	username, password := c.FormValue("username"), c.FormValue("password")
	if username == "" || password == "" {
		l.Warn("login_error", "status", 422, "reason", "missing form fields")
		return httpError(domain.Validation("Field required: username, password"), http.StatusUnauthorized)
	}

	res, err := h.Svc.Login(ctx, username, password)
	if err != nil {
		return httpError(err, http.StatusUnauthorized)
	}

	c.SetCookie(domain.CreateCookie(domain.RefreshCookieName, res.RefreshToken, "/", res.RefreshExp, h.CookieSecure))

	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var refreshToken string
	if cookie, err := c.Cookie(domain.RefreshCookieName); err == nil {
		refreshToken = cookie.Value
	}

	res, err := h.Svc.Refresh(ctx, mwauth.UserFrom(c), refreshToken)
	if err != nil {
		if refreshToken != "" {
			c.SetCookie(domain.DeleteCookie(domain.RefreshCookieName, "/", h.CookieSecure))
		}
		return httpError(err, http.StatusUnauthorized)
	}

	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
	})
}
