package identity

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/runavault/runavault/internal/errors"
	"github.com/runavault/runavault/internal/httputil"
)

// Middleware provides authentication via Bearer token in the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Decodes the token claims via ExtractClaims
// 3. Stores the claims in the request context for downstream handlers
//
// Error handling:
//   - Missing Authorization header → 401 Unauthorized
//   - Malformed Authorization header → 401 Unauthorized
//   - Malformed token → 401 Unauthorized
func Middleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authHeader[len(bearerPrefix):])
		claims, err := ExtractClaims(token)
		if err != nil {
			logger.Debug("authentication failed: token decode", slog.Any("error", err))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// rateLimiterEntry holds a rate limiter and last access time for cleanup.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// rateLimiterStore holds per-subject rate limiters with automatic cleanup.
type rateLimiterStore struct {
	limiters sync.Map // map[string]*rateLimiterEntry
	rps      float64
	burst    int
}

// RateLimitMiddleware enforces per-subject rate limiting on authenticated requests.
//
// MUST be used after Middleware (requires claims in the request context). Uses the
// token bucket algorithm via golang.org/x/time/rate; each subject gets an
// independent limiter.
//
// Returns 429 Too Many Requests when the limit is exceeded.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &rateLimiterStore{
		rps:   rps,
		burst: burst,
	}

	go store.cleanupStale(5 * time.Minute)

	return func(c *gin.Context) {
		claims, ok := FromContext(c.Request.Context())
		if !ok {
			// Authentication middleware should have caught this
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		entry := store.get(claims.Subject)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		allowed := entry.limiter.Allow()
		entry.mu.Unlock()

		if !allowed {
			logger.Warn("rate limit exceeded", slog.String("subject", claims.Subject))
			c.Header("Retry-After", "1")
			c.JSON(429, httputil.ErrorResponse{
				Error:   "rate_limited",
				Message: "Too many requests",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// get returns the limiter entry for a subject, creating it on first access.
func (s *rateLimiterStore) get(subject string) *rateLimiterEntry {
	if entry, ok := s.limiters.Load(subject); ok {
		return entry.(*rateLimiterEntry)
	}

	entry := &rateLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: time.Now(),
	}
	actual, _ := s.limiters.LoadOrStore(subject, entry)
	return actual.(*rateLimiterEntry)
}

// cleanupStale periodically removes limiters that have not been used recently.
func (s *rateLimiterStore) cleanupStale(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-interval)
		s.limiters.Range(func(key, value any) bool {
			entry := value.(*rateLimiterEntry)
			entry.mu.Lock()
			stale := entry.lastAccess.Before(cutoff)
			entry.mu.Unlock()
			if stale {
				s.limiters.Delete(key)
			}
			return true
		})
	}
}
