package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"referral-outreach/backend/pkg/response"
)

// RateLimiter 滑动窗口计数器（Redis 实现）
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// 已认证请求按成员计数，否则按客户端 IP 计数
// limiter 为 nil 或 Redis 出错时降级放行
func RateLimit(limiter RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		subject := "ip:" + c.ClientIP()
		if memberID, ok := c.Get(ctxMemberID); ok {
			subject = fmt.Sprintf("member:%v", memberID)
		}
		key := fmt.Sprintf("rate_limit:%s:%s", subject, c.FullPath())

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, response.CodeTooManyRequest, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
