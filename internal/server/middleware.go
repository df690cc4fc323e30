package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client's limiter is kept after its last request
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore holds a limiter per client IP
type rateLimiterStore struct {
	limiters  map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
	mu        sync.Mutex
}

func newRateLimiterStore(perSecond float64, burst int) *rateLimiterStore {
	return &rateLimiterStore{
		limiters:  make(map[string]*clientLimiter),
		limit:     rate.Limit(perSecond),
		burst:     burst,
		idleTTL:   limiterIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// getLimiter returns the rate limiter for ip, creating one if it doesn't exist.
// Limiters idle for longer than idleTTL are dropped at most once per idleTTL.
func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.idleTTL {
		for key, cl := range s.limiters {
			if now.Sub(cl.lastSeen) >= s.idleTTL {
				delete(s.limiters, key)
			}
		}
		s.lastSweep = now
	}

	cl, exists := s.limiters[ip]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

func (s *rateLimiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// rateLimitMiddleware limits requests per client IP. Forwarding headers only
// count when the peer is a trusted proxy, see Server.New.
func rateLimitMiddleware(store *rateLimiterStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !store.getLimiter(ip).Allow() {
			logger.Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}

// requestLogger logs every request once it has been served
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("Request failed", fields...)
			return
		}
		logger.Debug("Request served", fields...)
	}
}
