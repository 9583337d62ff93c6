package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkravec/rastlinka/internal/server/models"
)

// authRequest is the multiplexed /api/auth body. Action selects the
// operation; the remaining fields are read as that action needs them.
type authRequest struct {
	Action   string `json:"action"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// handleAuth dispatches register, login, and verify. Verify reads the
// bearer token from the Authorization header, not the body.
func (h *handlers) handleAuth(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	switch req.Action {
	case "register":
		user, token, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, sessionResponse{Token: token, User: user.Sanitized()})

	case "login":
		user, token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionResponse{Token: token, User: user.Sanitized()})

	case "verify":
		user, err := h.authorizer.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user.Sanitized()})

	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "unknown action"})
	}
}
