package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkravec/rastlinka/internal/server/models"
	"github.com/mkravec/rastlinka/internal/server/services"
)

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"price_cents"`
	ImageKey    string `json:"image_key"`
}

func (r productRequest) toInput() services.ProductInput {
	return services.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		PriceCents:  r.PriceCents,
		ImageKey:    r.ImageKey,
	}
}

type productListResponse struct {
	Items []*models.Product `json:"items"`
	Total int64             `json:"total"`
}

func (h *handlers) listProducts(c *gin.Context) {
	filter := models.ProductFilter{
		Category:      c.Query("category"),
		Search:        c.Query("search"),
		MinPriceCents: queryInt64(c, "min_price"),
		MaxPriceCents: queryInt64(c, "max_price"),
		Limit:         int(queryInt64(c, "limit")),
		Offset:        int(queryInt64(c, "offset")),
	}

	items, total, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []*models.Product{}
	}

	c.JSON(http.StatusOK, productListResponse{Items: items, Total: total})
}

func (h *handlers) getProduct(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *handlers) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	product, err := h.products.Create(c.Request.Context(), currentUser(c).ID, req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	product, err := h.products.Update(c.Request.Context(), currentUser(c).ID, c.Param("id"), req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// newProductImage hands the seller a presigned PUT URL; the returned key is
// what they later set as the product's image_key.
func (h *handlers) newProductImage(c *gin.Context) {
	key, url, err := h.products.NewImageUpload(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "presign upload failed", "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"key": key, "upload_url": url})
}

func queryInt64(c *gin.Context, name string) int64 {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
