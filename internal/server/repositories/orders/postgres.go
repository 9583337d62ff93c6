package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkravec/rastlinka/internal/common"
	"github.com/mkravec/rastlinka/internal/dbx"
	"github.com/mkravec/rastlinka/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {

	query :=
		`INSERT INTO orders (buyer_id, status, total_cents, commission_cents, pickup_point_id, pickup_point_name)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		order.BuyerID, order.Status, order.TotalCents, order.CommissionCents,
		order.PickupPointID, order.PickupPointName).
		Scan(&order.ID, &order.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return order, nil
}

func (r *PostgresRepository) AddItem(ctx context.Context, item *models.OrderItem) error {
	query :=
		`INSERT INTO order_items (order_id, product_id, seller_id, name, unit_price_cents, quantity)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		item.OrderID, item.ProductID, item.SellerID, item.Name,
		item.UnitPriceCents, item.Quantity).Scan(&item.ID)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const orderColumns = `id, buyer_id, status, total_cents, commission_cents, pickup_point_id, pickup_point_name, created_at`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order := &models.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.BuyerID, &order.Status, &order.TotalCents, &order.CommissionCents,
		&order.PickupPointID, &order.PickupPointName, &order.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return order, nil
}

func (r *PostgresRepository) ListItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	query :=
		`SELECT id, order_id, product_id, seller_id, name, unit_price_cents, quantity
		 FROM order_items
		 WHERE order_id = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.SellerID,
			&item.Name, &item.UnitPriceCents, &item.Quantity); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) ListByBuyer(ctx context.Context, buyerID string) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(
			&order.ID, &order.BuyerID, &order.Status, &order.TotalCents, &order.CommissionCents,
			&order.PickupPointID, &order.PickupPointName, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
