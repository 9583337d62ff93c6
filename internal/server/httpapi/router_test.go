package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mkravec/rastlinka/internal/common"
	"github.com/mkravec/rastlinka/internal/dbx"
	"github.com/mkravec/rastlinka/internal/logging"
	"github.com/mkravec/rastlinka/internal/server/auth"
	"github.com/mkravec/rastlinka/internal/server/config"
	"github.com/mkravec/rastlinka/internal/server/models"
	"github.com/mkravec/rastlinka/internal/server/ratelimit"
	"github.com/mkravec/rastlinka/internal/server/repositories/orders"
	"github.com/mkravec/rastlinka/internal/server/repositories/products"
	"github.com/mkravec/rastlinka/internal/server/repositories/reviews"
	"github.com/mkravec/rastlinka/internal/server/repositories/users"
	"github.com/mkravec/rastlinka/internal/server/services"
)

// testEnv drives the full router through httptest with in-memory
// repositories behind the real services, authorizer, and middleware.
type testEnv struct {
	t      *testing.T
	router http.Handler
	rm     *memRepoManager
	tokens *auth.TokenManager
	mock   sqlmock.Sqlmock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	rm := newMemRepoManager()
	tokens := auth.NewTokenManager([]byte(cfg.SecretKey), cfg.TokenValidityDuration)
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))

	deps := Deps{
		Users:      services.NewUserService(db, rm, tokens),
		Products:   services.NewProductService(db, rm, cfg),
		Orders:     services.NewOrderService(db, rm, cfg),
		Reviews:    services.NewReviewService(db, rm),
		Authorizer: auth.NewAuthorizer(tokens, rm.users),
		Limiter:    ratelimit.NewMemoryLimiter(),
		Logger:     logger,
	}

	return &testEnv{
		t:      t,
		router: NewRouter(cfg, deps),
		rm:     rm,
		tokens: tokens,
		mock:   mock,
	}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// register creates an account directly and returns the user with a token.
func (e *testEnv) register(name, email string) (*models.User, string) {
	e.t.Helper()

	hashed, err := auth.HashPassword("muskatovykvet")
	if err != nil {
		e.t.Fatalf("HashPassword: %v", err)
	}
	user, err := e.rm.users.Create(context.Background(), &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashed.Hash,
		PasswordSalt: hashed.Salt,
	})
	if err != nil {
		e.t.Fatalf("create user: %v", err)
	}
	token, err := e.tokens.Issue(user)
	if err != nil {
		e.t.Fatalf("issue token: %v", err)
	}
	return user, token
}

// --- in-memory repositories ---

type memRepoManager struct {
	users    *memUsersRepo
	products *memProductsRepo
	orders   *memOrdersRepo
	reviews  *memReviewsRepo
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{
		users:    &memUsersRepo{byID: map[string]*models.User{}},
		products: &memProductsRepo{byID: map[string]*models.Product{}},
		orders:   &memOrdersRepo{byID: map[string]*models.Order{}},
		reviews:  &memReviewsRepo{byID: map[string]*models.Review{}},
	}
}

func (m *memRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *memRepoManager) Users(db dbx.DBTX) users.Repository                  { return m.users }
func (m *memRepoManager) Products(db dbx.DBTX) products.Repository            { return m.products }
func (m *memRepoManager) Orders(db dbx.DBTX) orders.Repository                { return m.orders }
func (m *memRepoManager) Reviews(db dbx.DBTX) reviews.Repository              { return m.reviews }

type memUsersRepo struct {
	mu   sync.Mutex
	byID map[string]*models.User
	seq  int
}

func (r *memUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
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

func (r *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
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

func (r *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copy := *u
	return &copy, nil
}

func (r *memUsersRepo) UpdateName(ctx context.Context, id, name string) (*models.User, error) {
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

type memProductsRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Product
	seq  int
}

func (r *memProductsRepo) add(p *models.Product) *models.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := *p
	copy.ID = fmt.Sprintf("product-%d", r.seq)
	r.byID[copy.ID] = &copy
	return &copy
}

func (r *memProductsRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	return r.add(product), nil
}

func (r *memProductsRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copy := *p
	return &copy, nil
}

func (r *memProductsRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[product.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	copy := *product
	r.byID[copy.ID] = &copy
	return product, nil
}

func (r *memProductsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memProductsRepo) List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Product
	for _, p := range r.byID {
		copy := *p
		out = append(out, &copy)
	}
	return out, int64(len(out)), nil
}

type memOrdersRepo struct {
	mu    sync.Mutex
	byID  map[string]*models.Order
	items []models.OrderItem
	seq   int
}

func (r *memOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	order.ID = fmt.Sprintf("order-%d", r.seq)
	copy := *order
	r.byID[copy.ID] = &copy
	return order, nil
}

func (r *memOrdersRepo) AddItem(ctx context.Context, item *models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *item)
	return nil
}

func (r *memOrdersRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copy := *o
	return &copy, nil
}

func (r *memOrdersRepo) ListItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
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

func (r *memOrdersRepo) ListByBuyer(ctx context.Context, buyerID string) ([]*models.Order, error) {
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

func (r *memOrdersRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	o.Status = status
	return nil
}

type memReviewsRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Review
	seq  int
}

func (r *memReviewsRepo) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
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

func (r *memReviewsRepo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copy := *rev
	return &copy, nil
}

func (r *memReviewsRepo) ListByProduct(ctx context.Context, productID string) ([]*models.Review, error) {
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

func (r *memReviewsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}
