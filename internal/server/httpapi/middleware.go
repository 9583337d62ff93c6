package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkravec/rastlinka/internal/logging"
	"github.com/mkravec/rastlinka/internal/server/auth"
	"github.com/mkravec/rastlinka/internal/server/models"
	"github.com/mkravec/rastlinka/internal/server/ratelimit"
)

const ctxUserKey = "authenticatedUser"

// corsMiddleware answers preflights and stamps permissive CORS headers on
// every response; the storefront runs on a different origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// timeoutMiddleware puts a deadline on the request context so database work
// cannot hang a handler. Exhaustion surfaces as a 500 from writeError,
// never as an auth failure.
func timeoutMiddleware(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// authMiddleware resolves the bearer token to a user and stores it in the
// gin context. Handlers behind it can assume currentUser succeeds.
func authMiddleware(authorizer *auth.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authorizer.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(ctxUserKey).(*models.User)
}

// rateLimitMiddleware applies a fixed window per client IP. The limiter
// failing (e.g. Redis down) fails open; blocking logins on limiter
// availability would be worse than briefly not limiting them.
func rateLimitMiddleware(limiter ratelimit.Limiter, limit int, window time.Duration, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), c.ClientIP(), limit, window)
		if err != nil {
			log.Warn(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			retryAfter := time.Until(decision.ResetAt).Seconds()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(int(retryAfter)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "Too many requests"})
			return
		}

		c.Next()
	}
}
