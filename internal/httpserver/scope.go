package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/scope_auth/internal/domain"
	"github.com/Skotchmaster/scope_auth/internal/logging"
	"github.com/Skotchmaster/scope_auth/internal/service"
	"github.com/Skotchmaster/scope_auth/internal/transport"
)

type ScopeHTTP struct {
	Svc *service.ScopeService
}

// parseID treats an unparsable id like an id that matches nothing.
func parseID(raw, entity string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, domain.Missing(err, "%s %s not found", entity, raw)
	}
	return uint(id), nil
}

func (h *ScopeHTTP) List(c echo.Context) error {
	scopes, err := h.Svc.ListScopes(c.Request().Context())
	if err != nil {
		return httpError(err, http.StatusForbidden)
	}
	return c.JSON(http.StatusOK, scopes)
}

func (h *ScopeHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "scope.create")

	var req transport.NewScopeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_scope_error", "status", 422, "reason", "invalid body", "error", err)
		return httpError(domain.Validation("Invalid request body"), http.StatusForbidden)
	}

	scope, err := h.Svc.CreateScope(ctx, req.Name)
	if err != nil {
		return httpError(err, http.StatusForbidden)
	}
	return c.JSON(http.StatusOK, scope)
}

func (h *ScopeHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c.Param("id"), "Scope")
	if err != nil {
		return httpError(err, http.StatusForbidden)
	}

	scope, err := h.Svc.DeleteScope(ctx, id)
	if err != nil {
		return httpError(err, http.StatusForbidden)
	}
	return c.JSON(http.StatusOK, scope)
}

func (h *ScopeHTTP) Assign(c echo.Context) error {
	ctx := c.Request().Context()

	userID, scopeID, err := assignmentIDs(c)
	if err != nil {
		return httpError(err, http.StatusForbidden)
	}

	if _, err := h.Svc.AssignScope(ctx, userID, scopeID); err != nil {
		return httpError(err, http.StatusForbidden)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ScopeHTTP) Unassign(c echo.Context) error {
	ctx := c.Request().Context()

	userID, scopeID, err := assignmentIDs(c)
	if err != nil {
		return httpError(err, http.StatusForbidden)
	}

	if _, err := h.Svc.UnassignScope(ctx, userID, scopeID); err != nil {
		return httpError(err, http.StatusForbidden)
	}
	return c.NoContent(http.StatusNoContent)
}

func assignmentIDs(c echo.Context) (userID, scopeID uint, err error) {
	if scopeID, err = parseID(c.Param("scope_id"), "Scope"); err != nil {
		return 0, 0, err
	}
	if userID, err = parseID(c.Param("user_id"), "User"); err != nil {
		return 0, 0, err
	}
	return userID, scopeID, nil
}
