package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/scope_auth/internal/domain"
	"github.com/Skotchmaster/scope_auth/internal/transport"
)

// httpError maps a domain error to its status. Auth routes report a missing
// record as 401, scope routes as 403, so the caller picks missingStatus.
func httpError(err error, missingStatus int) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrMissing):
		status = missingStatus
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusUnprocessableEntity
	}

	detail := "Internal Server Error"
	if status != http.StatusInternalServerError {
		detail = domain.Detail(err, http.StatusText(status))
	}
	return echo.NewHTTPError(status, detail).SetInternal(err)
}

// ErrorHandler renders every error as {"detail": ...}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he := httpError(err, http.StatusUnauthorized)
	if he.Code == http.StatusUnauthorized {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, transport.ErrorResponse{Detail: he.Message})
}
