package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkravec/rastlinka/internal/logging"
	"github.com/mkravec/rastlinka/internal/server/auth"
	"github.com/mkravec/rastlinka/internal/server/config"
	"github.com/mkravec/rastlinka/internal/server/ratelimit"
	"github.com/mkravec/rastlinka/internal/server/services"
)

// handlers groups the services the route handlers dispatch to.
type handlers struct {
	users      *services.UserService
	products   *services.ProductService
	orders     *services.OrderService
	reviews    *services.ReviewService
	authorizer *auth.Authorizer
	logger     logging.Logger
}

// Deps is everything the HTTP server needs from the app.
type Deps struct {
	Users      *services.UserService
	Products   *services.ProductService
	Orders     *services.OrderService
	Reviews    *services.ReviewService
	Authorizer *auth.Authorizer
	Limiter    ratelimit.Limiter
	Logger     logging.Logger
}

// NewRouter builds the gin engine with the full middleware chain and route
// table. Exposed separately from Server so handler tests can drive it with
// httptest.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(timeoutMiddleware(cfg.RequestTimeout))

	h := &handlers{
		users:      deps.Users,
		products:   deps.Products,
		orders:     deps.Orders,
		reviews:    deps.Reviews,
		authorizer: deps.Authorizer,
		logger:     deps.Logger,
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	api.POST("/auth",
		rateLimitMiddleware(deps.Limiter, cfg.AuthRateLimit, cfg.AuthRateWindow, deps.Logger),
		h.handleAuth)

	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)
	api.GET("/products/:id/reviews", h.listReviews)

	authed := api.Group("", authMiddleware(deps.Authorizer))
	authed.GET("/user", h.getProfile)
	authed.PUT("/user", h.updateProfile)
	authed.POST("/products", h.createProduct)
	authed.PUT("/products/:id", h.updateProduct)
	authed.DELETE("/products/:id", h.deleteProduct)
	authed.POST("/products/images", h.newProductImage)
	authed.POST("/products/:id/reviews", h.createReview)
	authed.DELETE("/reviews/:id", h.deleteReview)
	authed.POST("/orders", h.createOrder)
	authed.GET("/orders", h.listOrders)
	authed.GET("/orders/:id", h.getOrder)
	authed.POST("/orders/:id/cancel", h.cancelOrder)

	return router
}

// Server wraps the HTTP listener with graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     logging.Logger
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.EndpointAddr,
			Handler:           NewRouter(cfg, deps),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: deps.Logger,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info(shutdownCtx, "http server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return <-errCh
}
