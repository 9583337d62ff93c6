package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkravec/rastlinka/internal/server/models"
)

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *handlers) createReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), currentUser(c).ID, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *handlers) listReviews(c *gin.Context) {
	reviews, err := h.reviews.ListByProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if reviews == nil {
		reviews = []*models.Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *handlers) deleteReview(c *gin.Context) {
	if err := h.reviews.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
