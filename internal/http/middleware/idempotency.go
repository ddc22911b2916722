package middleware

import (
	"net/http"
	"strings"
	"time"

	"tourdesk/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// Idempotency rejects a repeated Idempotency-Key on write requests so a
// double-submitted assignment form creates one row. Requests without the
// header, or without redis, pass through.
func Idempotency(client redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		if client == nil || key == "" || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		redisKey := "tourdesk:idempotency:" + c.FullPath() + ":" + key
		acquired, err := client.SetNX(c.Request.Context(), redisKey, "processing", idempotencyTTL).Result()
		if err != nil {
			utils.LogWarn(GetRequestID(c), "idempotency", "setnx", err.Error())
			c.Next()
			return
		}
		if !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success":    false,
				"error":      "request dengan Idempotency-Key ini sudah diproses",
				"code":       "duplicate_request",
				"request_id": GetRequestID(c),
			})
			return
		}

		c.Next()

		// Failed requests may be retried with the same key.
		if c.Writer.Status() >= http.StatusBadRequest {
			_ = client.Del(c.Request.Context(), redisKey).Err()
		}
	}
}
