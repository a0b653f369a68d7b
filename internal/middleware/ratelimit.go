package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/skyvolt/aeroscope-backend/internal/aierr"
	"github.com/skyvolt/aeroscope-backend/internal/handlers"
	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/requestdata"
	"github.com/skyvolt/aeroscope-backend/internal/utils"
)

// RateLimiter is a fixed-window per-user limiter over redis, applied to the
// governed AI endpoints. With a nil client it is disabled and passes every
// request through; the AI pipeline still works on deployments without redis.
type RateLimiter struct {
	log    *logger.Logger
	rdb    *goredis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(log *logger.Logger, requestsPerMinute int) *RateLimiter {
	limiterLog := log.With("middleware", "RateLimiter")

	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		limiterLog.Warn("REDIS_ADDR not set, rate limiting disabled")
		return &RateLimiter{log: limiterLog, limit: requestsPerMinute, window: time.Minute}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	return &RateLimiter{
		log:    limiterLog,
		rdb:    rdb,
		limit:  requestsPerMinute,
		window: time.Minute,
	}
}

func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rdb == nil || rl.limit <= 0 {
			c.Next()
			return
		}

		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil || rd.UserID == uuid.Nil {
			c.Next()
			return
		}

		windowStart := time.Now().Unix() / int64(rl.window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%s:%d", rd.UserID, c.FullPath(), windowStart)

		count, err := rl.rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis being down should not take the AI endpoints with it.
			rl.log.Warn("Rate limit check failed, allowing request", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			rl.rdb.Expire(c.Request.Context(), key, rl.window)
		}
		if count > int64(rl.limit) {
			rl.reject(c)
			return
		}
		c.Next()
	}
}

// reject answers an over-limit request with the shared response envelope and
// the typed rate limit error, plus the standard Retry-After header.
func (rl *RateLimiter) reject(c *gin.Context) {
	retryAfter := rl.window
	c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
	handlers.RespondError(c, http.StatusTooManyRequests, "rate_limited", &aierr.RateLimitError{RetryAfter: retryAfter})
	c.Abort()
}
