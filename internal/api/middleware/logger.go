package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 不记录访问日志的路径（负载均衡探活）
var quietPaths = map[string]bool{
	"/health": true,
}

// Logger 访问日志
//
// route 记录路由模板（/api/v1/practices/:id），便于按接口聚合；
// 上传接口额外记录请求体大小。
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if c.Request.ContentLength > 0 {
			fields = append(fields, zap.Int64("bytes_in", c.Request.ContentLength))
		}
		if memberID, ok := c.Get(ctxMemberID); ok {
			fields = append(fields, zap.Any("member_id", memberID))
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, zap.Strings("errors", errs.Errors()))
		}

		switch {
		case status >= 500:
			logger.Error("请求处理失败", fields...)
		case status >= 400:
			logger.Warn("请求被拒绝", fields...)
		default:
			logger.Info("请求完成", fields...)
		}
	}
}
