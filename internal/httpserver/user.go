package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mwauth "github.com/Skotchmaster/scope_auth/internal/middleware/auth"
)

type UserHTTP struct{}

func (h *UserHTTP) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, mwauth.UserFrom(c).Public())
}
