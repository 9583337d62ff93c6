package reviews

import (
	"context"

	"github.com/mkravec/rastlinka/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	GetByID(ctx context.Context, id string) (*models.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]*models.Review, error)
	Delete(ctx context.Context, id string) error
}
