package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkravec/rastlinka/internal/common"
	"github.com/mkravec/rastlinka/internal/server/auth"
	"github.com/mkravec/rastlinka/internal/server/models"
	"github.com/mkravec/rastlinka/internal/server/repositories/repomanager"
)

// ReviewService manages product reviews. One review per (product,
// reviewer); deletes are reviewer-only with the existence check first.
type ReviewService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewReviewService(db *sql.DB, m repomanager.RepositoryManager) *ReviewService {
	return &ReviewService{db: db, repomanager: m}
}

// Create adds a review for a product. The product must exist
// (ErrorNotFound otherwise); a second review from the same user for the
// same product yields ErrConflict.
func (s *ReviewService) Create(ctx context.Context, reviewerID, productID string, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", common.ErrValidation)
	}

	if _, err := s.repomanager.Products(s.db).GetByID(ctx, productID); err != nil {
		return nil, err
	}

	return s.repomanager.Reviews(s.db).Create(ctx, &models.Review{
		ProductID:  productID,
		ReviewerID: reviewerID,
		Rating:     rating,
		Comment:    comment,
	})
}

// ListByProduct returns all reviews of a product, newest first. The
// product must exist.
func (s *ReviewService) ListByProduct(ctx context.Context, productID string) ([]*models.Review, error) {
	if _, err := s.repomanager.Products(s.db).GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.repomanager.Reviews(s.db).ListByProduct(ctx, productID)
}

// Delete removes the caller's own review. Missing → ErrorNotFound; not the
// reviewer → ErrForbidden.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID string) error {
	repo := s.repomanager.Reviews(s.db)

	review, err := repo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !auth.IsOwner(review.ReviewerID, userID) {
		return common.ErrForbidden
	}

	return repo.Delete(ctx, reviewID)
}
