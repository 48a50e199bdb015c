package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"referral-outreach/backend/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// jsonMax 作用于普通请求；multipart 上传（表格导入 / 传单）使用 uploadMax
func BodyLimit(jsonMax, uploadMax int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := jsonMax
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = uploadMax
		}
		if c.Request.Body != nil && limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		var tooLarge *http.MaxBytesError
		for _, err := range c.Errors {
			if errors.As(err.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, response.CodeTooLarge, "请求体过大")
				return
			}
		}
	}
}
