package handler

import (
	"net/http"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"conftix/internal/errors"
)

// currentUserID extracts the authenticated user's id from the JWT placed in
// the context by the echo-jwt middleware.
func currentUserID(c echo.Context) (uint, error) {
	token, ok := c.Get("user").(*jwtv5.Token)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(jwtv5.MapClaims)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	return uint(id), nil
}

// respondError maps domain errors (including FieldErrors) to HTTP responses.
func respondError(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
