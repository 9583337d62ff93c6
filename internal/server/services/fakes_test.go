package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/mkravec/rastlinka/internal/common"
	"github.com/mkravec/rastlinka/internal/dbx"
	"github.com/mkravec/rastlinka/internal/server/models"
	"github.com/mkravec/rastlinka/internal/server/repositories/orders"
	"github.com/mkravec/rastlinka/internal/server/repositories/products"
	"github.com/mkravec/rastlinka/internal/server/repositories/reviews"
	"github.com/mkravec/rastlinka/internal/server/repositories/users"
)

// In-memory repositories backing the service tests. They ignore the DBTX
// handle, so the sql.DB passed to services may be a sqlmock or nil.
type fakeRepoManager struct {
	users    *fakeUsersRepo
	products *fakeProductsRepo
	orders   *fakeOrdersRepo
	reviews  *fakeReviewsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:    &fakeUsersRepo{byID: map[string]*models.User{}},
		products: &fakeProductsRepo{byID: map[string]*models.Product{}},
		orders:   &fakeOrdersRepo{byID: map[string]*models.Order{}},
		reviews:  &fakeReviewsRepo{byID: map[string]*models.Review{}},
	}
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                  { return m.users }
func (m *fakeRepoManager) Products(db dbx.DBTX) products.Repository            { return m.products }
func (m *fakeRepoManager) Orders(db dbx.DBTX) orders.Repository                { return m.orders }
func (m *fakeRepoManager) Reviews(db dbx.DBTX) reviews.Repository              { return m.reviews }

type fakeUsersRepo struct {
	mu   sync.Mutex
	byID map[string]*models.User
	seq  int
}

func (r *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, common.ErrConflict
		}
	}
	r.seq++
	u := *user
	u.ID = fmt.Sprintf("user-%d", r.seq)
	r.byID[u.ID] = &u
	return &u, nil
}

func (r *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copy := *u
	return &copy, nil
}

func (r *fakeUsersRepo) UpdateName(ctx context.Context, id, name string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.Name = name
	copy := *u
	return &copy, nil
}

type fakeProductsRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Product
	seq  int
}

func (r *fakeProductsRepo) add(p *models.Product) *models.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := *p
	copy.ID = fmt.Sprintf("product-%d", r.seq)
	r.byID[copy.ID] = &copy
	return &copy
}

func (r *fakeProductsRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	return r.add(product), nil
}

func (r *fakeProductsRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copy := *p
	return &copy, nil
}

func (r *fakeProductsRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[product.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	copy := *product
	r.byID[copy.ID] = &copy
	return product, nil
}

func (r *fakeProductsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeProductsRepo) List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Product
	for _, p := range r.byID {
		copy := *p
		out = append(out, &copy)
	}
	return out, int64(len(out)), nil
}

type fakeOrdersRepo struct {
	mu    sync.Mutex
	byID  map[string]*models.Order
	items []models.OrderItem
	seq   int

	failCreate bool
}

func (r *fakeOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return nil, common.ErrorInternal
	}
	r.seq++
	order.ID = fmt.Sprintf("order-%d", r.seq)
	copy := *order
	r.byID[copy.ID] = &copy
	return order, nil
}

func (r *fakeOrdersRepo) AddItem(ctx context.Context, item *models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *item)
	return nil
}

func (r *fakeOrdersRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copy := *o
	return &copy, nil
}

func (r *fakeOrdersRepo) ListItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.OrderItem
	for _, it := range r.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakeOrdersRepo) ListByBuyer(ctx context.Context, buyerID string) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Order
	for _, o := range r.byID {
		if o.BuyerID == buyerID {
			copy := *o
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *fakeOrdersRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	o.Status = status
	return nil
}

type fakeReviewsRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Review
	seq  int
}

func (r *fakeReviewsRepo) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.ProductID == review.ProductID && existing.ReviewerID == review.ReviewerID {
			return nil, common.ErrConflict
		}
	}
	r.seq++
	copy := *review
	copy.ID = fmt.Sprintf("review-%d", r.seq)
	r.byID[copy.ID] = &copy
	return &copy, nil
}

func (r *fakeReviewsRepo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copy := *rev
	return &copy, nil
}

func (r *fakeReviewsRepo) ListByProduct(ctx context.Context, productID string) ([]*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Review
	for _, rev := range r.byID {
		if rev.ProductID == productID {
			copy := *rev
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *fakeReviewsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}
