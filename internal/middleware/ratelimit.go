package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/smart-health-api/internal/config"
	"github.com/harentsoaR/smart-health-api/internal/services"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

// RateLimit throttles by user id when authenticated, by client IP otherwise.
// Limiter errors let the request through.
func RateLimit(limiter services.Limiter, scope string, rate config.Rate, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || rate.Limit <= 0 {
			c.Next()
			return
		}

		ident := "ip:" + c.ClientIP()
		if id := CurrentUserID(c); id != 0 {
			ident = fmt.Sprintf("user:%d", id)
		}

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), scope+":"+ident, rate.Limit, rate.Window)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			secs := int(math.Ceil(retryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(secs))
			utils.AbortWithError(c, http.StatusTooManyRequests, utils.CodeThrottled,
				"Request was throttled", fmt.Sprintf("Expected available in %d seconds.", secs))
			return
		}
		c.Next()
	}
}
