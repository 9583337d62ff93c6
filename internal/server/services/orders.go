package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkravec/rastlinka/internal/common"
	"github.com/mkravec/rastlinka/internal/dbx"
	"github.com/mkravec/rastlinka/internal/server/auth"
	sc "github.com/mkravec/rastlinka/internal/server/config"
	"github.com/mkravec/rastlinka/internal/server/models"
	"github.com/mkravec/rastlinka/internal/server/repositories/repomanager"
)

// OrderItemInput references a product and a quantity in a new order.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// OrderInput is the caller-supplied part of a new order.
type OrderInput struct {
	Items           []OrderItemInput
	PickupPointID   string
	PickupPointName string
}

// OrderService places and manages orders. Orders are buyer-owned: only the
// buyer may view or cancel them, and the existence check always runs
// before the ownership check.
type OrderService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	commissionBps int64
}

func NewOrderService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *OrderService {
	return &OrderService{db: db, repomanager: m, commissionBps: int64(cfg.CommissionBps)}
}

// Commission computes the marketplace cut of a total, in cents.
// Integer arithmetic, truncated toward zero, same as the storefront's.
func Commission(totalCents, commissionBps int64) int64 {
	return totalCents * commissionBps / 10_000
}

// Create places an order for buyerID. Every referenced product is
// re-fetched so prices and names are snapshotted at purchase time; a
// missing product fails the whole order with ErrorNotFound. The order row
// and its items are written in one transaction.
func (s *OrderService) Create(ctx context.Context, buyerID string, input OrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: items are required", common.ErrValidation)
	}
	for _, item := range input.Items {
		if item.ProductID == "" {
			return nil, fmt.Errorf("%w: product_id is required", common.ErrValidation)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", common.ErrValidation)
		}
	}

	productRepo := s.repomanager.Products(s.db)

	var total int64
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, in := range input.Items {
		product, err := productRepo.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		total += product.PriceCents * int64(in.Quantity)
		items = append(items, models.OrderItem{
			ProductID:      product.ID,
			SellerID:       product.SellerID,
			Name:           product.Name,
			UnitPriceCents: product.PriceCents,
			Quantity:       in.Quantity,
		})
	}

	order := &models.Order{
		BuyerID:         buyerID,
		Status:          models.OrderStatusPending,
		TotalCents:      total,
		CommissionCents: Commission(total, s.commissionBps),
		PickupPointID:   input.PickupPointID,
		PickupPointName: input.PickupPointName,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		orderRepo := s.repomanager.Orders(tx)

		if _, err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			if err := orderRepo.AddItem(ctx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, common.ErrorInternal
	}

	order.Items = items
	return order, nil
}

// Get returns one order with its items. Missing order → ErrorNotFound; a
// caller other than the buyer → ErrForbidden.
func (s *OrderService) Get(ctx context.Context, userID, orderID string) (*models.Order, error) {
	repo := s.repomanager.Orders(s.db)

	order, err := repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !auth.IsOwner(order.BuyerID, userID) {
		return nil, common.ErrForbidden
	}

	items, err := repo.ListItems(ctx, orderID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	order.Items = items

	return order, nil
}

// List returns the caller's orders, newest first.
func (s *OrderService) List(ctx context.Context, userID string) ([]*models.Order, error) {
	return s.repomanager.Orders(s.db).ListByBuyer(ctx, userID)
}

// Cancel cancels a pending order. Missing → ErrorNotFound; not the buyer →
// ErrForbidden; any status other than pending → ErrConflict.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID string) (*models.Order, error) {
	repo := s.repomanager.Orders(s.db)

	order, err := repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !auth.IsOwner(order.BuyerID, userID) {
		return nil, common.ErrForbidden
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: order is %s", common.ErrConflict, order.Status)
	}

	if err := repo.UpdateStatus(ctx, orderID, models.OrderStatusCancelled); err != nil {
		return nil, common.ErrorInternal
	}
	order.Status = models.OrderStatusCancelled

	return order, nil
}
