package orders

import (
	"context"

	"github.com/mkravec/rastlinka/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	AddItem(ctx context.Context, item *models.OrderItem) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
