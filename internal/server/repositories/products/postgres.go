package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mkravec/rastlinka/internal/common"
	"github.com/mkravec/rastlinka/internal/dbx"
	"github.com/mkravec/rastlinka/internal/server/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `id, seller_id, name, description, category, price_cents, currency, image_key, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {

	query :=
		`INSERT INTO products (seller_id, name, description, category, price_cents, currency, image_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		product.SellerID, product.Name, product.Description, product.Category,
		product.PriceCents, product.Currency, product.ImageKey).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return product, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product := &models.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID, &product.SellerID, &product.Name, &product.Description,
		&product.Category, &product.PriceCents, &product.Currency, &product.ImageKey,
		&product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return product, nil
}

func (r *PostgresRepository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	query :=
		`UPDATE products
		 SET name = $2, description = $3, category = $4, price_cents = $5, image_key = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + productColumns

	updated := &models.Product{}
	err := r.db.QueryRowContext(ctx, query,
		product.ID, product.Name, product.Description, product.Category,
		product.PriceCents, product.ImageKey).Scan(
		&updated.ID, &updated.SellerID, &updated.Name, &updated.Description,
		&updated.Category, &updated.PriceCents, &updated.Currency, &updated.ImageKey,
		&updated.CreatedAt, &updated.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
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

// List returns one page of the catalog plus the unpaged total, so clients
// can render page controls.
func (r *PostgresRepository) List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int64, error) {
	where, args := buildFilter(filter)

	var total int64
	countQuery := `SELECT count(*) FROM products` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit, offset)
	pageQuery := fmt.Sprintf(`SELECT `+productColumns+` FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(
			&product.ID, &product.SellerID, &product.Name, &product.Description,
			&product.Category, &product.PriceCents, &product.Currency, &product.ImageKey,
			&product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		result = append(result, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return result, total, nil
}

func buildFilter(filter models.ProductFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Search != "" {
		add("name ILIKE $%d", "%"+filter.Search+"%")
	}
	if filter.MinPriceCents > 0 {
		add("price_cents >= $%d", filter.MinPriceCents)
	}
	if filter.MaxPriceCents > 0 {
		add("price_cents <= $%d", filter.MaxPriceCents)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
