// Package httpapi is the HTTP transport of the marketplace: a gin router,
// the middleware chain (CORS, auth, rate limiting, request deadlines), and
// the handlers mapping service results onto the JSON wire format.
package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mkravec/rastlinka/internal/common"
)

// ErrorResponse is the single-field error body every failed request gets.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError maps a sentinel error onto a status code and a generic body.
// Anything unrecognized, including a blown request deadline, becomes a 500
// so internals never leak into responses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
	case errors.Is(err, common.ErrNoToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "No token provided"})
	case errors.Is(err, common.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid token"})
	case errors.Is(err, common.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
	case errors.Is(err, common.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, common.ErrorNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	case errors.Is(err, common.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{Error: "Already exists"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// validationMessage strips the sentinel prefix so the client sees
// "name is required" rather than "validation error: name is required".
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), common.ErrValidation.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" {
		return "invalid request"
	}
	return msg
}
