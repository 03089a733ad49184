package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shafin-dev/localhub/backend/internal/apperrors"
	"github.com/shafin-dev/localhub/backend/internal/models"
)

// getUserIDFromContext extracts the authenticated user ID set by the
// JWT middleware. Returns 0 for anonymous requests.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

// httpError maps a service error onto an Echo HTTP error. Storage
// failures get a generic message so internals never reach the client.
func httpError(err error) *echo.HTTPError {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError || errors.Is(err, apperrors.ErrStorageUnavailable) {
		return echo.NewHTTPError(status, "Service temporarily unavailable")
	}
	return echo.NewHTTPError(status, err.Error())
}
