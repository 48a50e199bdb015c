package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"referral-outreach/backend/pkg/jwt"
	"referral-outreach/backend/pkg/response"
)

// 认证后写入 gin.Context 的键，handler 通过同名键读取
const (
	ctxMemberID    = "member_id"
	ctxDisplayName = "display_name"
	ctxRole        = "role"
	ctxClaims      = "claims"
)

// TokenBlacklist 已注销 Token 查询（Redis 实现）
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

func bearerToken(c *gin.Context) (string, string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", "缺少认证头"
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", "认证头格式无效"
	}
	return strings.TrimSpace(token), ""
}

func abortUnauthorized(c *gin.Context, message string) {
	response.Unauthorized(c, response.CodeUnauthorized, message)
	c.Abort()
}

// JWTAuth 校验 Access Token 并注入当前成员
//
// blacklist 为 nil 时跳过注销检查；Redis 查询出错时放行。
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, problem := bearerToken(c)
		if problem != "" {
			abortUnauthorized(c, problem)
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			abortUnauthorized(c, "Token 无效或已过期")
			return
		}
		if claims.TokenType != jwt.TokenTypeAccess {
			abortUnauthorized(c, "Token 类型无效")
			return
		}

		if blacklist != nil {
			if revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && revoked {
				abortUnauthorized(c, "Token 已注销")
				return
			}
		}

		c.Set(ctxMemberID, claims.MemberID)
		c.Set(ctxDisplayName, claims.DisplayName)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxClaims, claims)

		c.Next()
	}
}

// RoleAuth 仅允许指定角色访问（成员管理、导入、备份等限 admin）
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxRole)
		if !exists {
			abortUnauthorized(c, "未认证")
			return
		}

		if memberRole, _ := role.(string); !lo.Contains(allowedRoles, memberRole) {
			response.Forbidden(c, response.CodeForbidden, "无权限访问")
			c.Abort()
			return
		}
		c.Next()
	}
}
