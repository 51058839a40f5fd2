package middleware

import (
	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/frontdesk/service-reservation/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware admits requests through a shared token bucket and
// answers 429 RATE_LIMITED when it is empty.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			response.Error(c, apperror.ErrRateLimited)
			return
		}
		c.Next()
	}
}
