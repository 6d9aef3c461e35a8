package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/deppfellow/codetemplate/internal/errs"
	"github.com/deppfellow/codetemplate/internal/model"
	"github.com/deppfellow/codetemplate/internal/server"
)

// RateLimitKeyPrefix namespaces the rate limit counters in Redis.
const RateLimitKeyPrefix = "codetemplate:ratelimit:"

// redisStoreTimeout bounds a single Allow call.
const redisStoreTimeout = 250 * time.Millisecond

// RedisRateLimiterStore is a fixed-window echo RateLimiterStore shared by
// every instance of the service through Redis.
//
// Each identifier gets one counter per window; the counter expires with
// the window. Redis failures let the request through.
type RedisRateLimiterStore struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	logger *zerolog.Logger
	now    func() time.Time
}

func NewRedisRateLimiterStore(client redis.Cmdable, limit int, window time.Duration, logger *zerolog.Logger) *RedisRateLimiterStore {
	return &RedisRateLimiterStore{
		client: client,
		limit:  limit,
		window: window,
		logger: logger,
		now:    time.Now,
	}
}

func (s *RedisRateLimiterStore) key(identifier string) string {
	bucket := s.now().UnixNano() / int64(s.window)
	return RateLimitKeyPrefix + identifier + ":" + strconv.FormatInt(bucket, 10)
}

// Allow implements middleware.RateLimiterStore.
func (s *RedisRateLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisStoreTimeout)
	defer cancel()

	key := s.key(identifier)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, s.window)
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("identifier", identifier).Msg("rate limit store unavailable, allowing request")
		return true, nil
	}

	return incr.Val() <= int64(s.limit), nil
}

type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Limit enforces the configured requests per window per gateway account,
// falling back to the client IP. It must run after Gateway. It is a
// pass-through when rate limiting is disabled or Redis is not configured.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	cfg := r.server.Config.RateLimit
	if cfg == nil || !cfg.Enabled || r.server.Redis == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	store := NewRedisRateLimiterStore(r.server.Redis, cfg.Requests, time.Duration(cfg.Window)*time.Second, r.server.Logger)
	return r.limitWithStore(store)
}

func (r *RateLimitMiddleware) limitWithStore(store middleware.RateLimiterStore) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return rateLimitIdentifier(c), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return fmt.Errorf("extract rate limit identifier: %w", err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().Str("identifier", identifier).Msg("rate limit exceeded")
			return errs.NewRateLimitedError("Too many requests")
		},
	})
}

// rateLimitIdentifier buckets by gateway account. Behind the gateway every
// request shares its IP, so the client IP is only used without an account.
func rateLimitIdentifier(c echo.Context) string {
	if accountID := model.GetGatewayData(c).AccountID; accountID != "" {
		return "account:" + accountID
	}
	return "ip:" + c.RealIP()
}

// RecordRateLimitHit reports a denied request to New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]any{
			"endpoint": endpoint,
		})
	}
}
