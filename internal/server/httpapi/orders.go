package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkravec/rastlinka/internal/server/models"
	"github.com/mkravec/rastlinka/internal/server/services"
)

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type orderRequest struct {
	Items           []orderItemRequest `json:"items"`
	PickupPointID   string             `json:"pickup_point_id"`
	PickupPointName string             `json:"pickup_point_name"`
}

func (h *handlers) createOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	input := services.OrderInput{
		PickupPointID:   req.PickupPointID,
		PickupPointName: req.PickupPointName,
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, services.OrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	order, err := h.orders.Create(c.Request.Context(), currentUser(c).ID, input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handlers) cancelOrder(c *gin.Context) {
	order, err := h.orders.Cancel(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
