package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c).Sanitized())
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

func (h *handlers) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUser(c).ID, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.Sanitized())
}
