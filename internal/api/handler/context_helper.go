package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-outreach/backend/pkg/jwt"
	"referral-outreach/backend/pkg/response"
)

// 上下文键（由 middleware.JWTAuth 注入）
const (
	ctxMemberID    = "member_id"
	ctxDisplayName = "display_name"
	ctxRole        = "role"
	ctxClaims      = "claims"
)

// MustGetMemberID 从 Gin 上下文中安全提取 member_id。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetMemberID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(ctxMemberID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	id, ok := v.(uint64)
	if !ok || id == 0 {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	return id, true
}

// MustGetClaims 从 Gin 上下文中提取完整的 access token claims。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// CurrentMemberName 当前成员的显示名，未认证时返回空串
func CurrentMemberName(c *gin.Context) string {
	return c.GetString(ctxDisplayName)
}

// ParseIDParam 解析路径参数中的数字 ID，失败时写入 400 响应
func ParseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, "ID 格式无效")
		return 0, false
	}
	return id, true
}

// queryLimit 解析 ?limit=，缺省或非法时返回 def
func queryLimit(c *gin.Context, def, max int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// readUpload 读取 multipart 文件字段，超过 maxBytes 或缺失时写入 400 响应
func readUpload(c *gin.Context, field string, maxBytes int64) (name, contentType string, data []byte, ok bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		response.BadRequest(c, 10001, "请上传文件字段 "+field)
		return "", "", nil, false
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "上传文件过大")
		return "", "", nil, false
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "无法读取上传文件")
		return "", "", nil, false
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		response.BadRequest(c, 10001, "无法读取上传文件")
		return "", "", nil, false
	}
	return fh.Filename, fh.Header.Get("Content-Type"), data, true
}
