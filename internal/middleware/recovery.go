package middleware

import (
	"net/http"

	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/frontdesk/service-reservation/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a handler panic into a 500 response.
func RecoveryMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("request_id", GetRequestID(c)),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.Envelope{
					Success: false,
					Error: &response.ErrorBody{
						Code:    string(apperror.KindInternal),
						Message: "internal server error",
					},
				})
			}
		}()
		c.Next()
	}
}
