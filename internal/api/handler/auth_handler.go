package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/service"
	"referral-outreach/backend/pkg/response"
)

// AuthHandler 认证与团队成员 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 成员登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "refresh_token 不能为空")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 成员登出（access 与可选的 refresh token 加入黑名单）
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	var req dto.RefreshTokenRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authSvc.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// GetCurrentMember 当前登录成员
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentMember(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	response.OK(c, dto.MemberResponse{
		ID:          claims.MemberID,
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
		Role:        claims.Role,
		IsActive:    true,
	})
}

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	memberID, ok := MustGetMemberID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), memberID, &req); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListMembers 团队成员列表
// GET /api/v1/members
func (h *AuthHandler) ListMembers(c *gin.Context) {
	members, err := h.authSvc.ListMembers(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": members})
}

// CreateMember 新增团队成员
// POST /api/v1/members
func (h *AuthHandler) CreateMember(c *gin.Context) {
	var req dto.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	member, err := h.authSvc.CreateMember(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, member)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, "用户名或密码错误")
	case errors.Is(err, service.ErrMemberDisabled):
		response.Forbidden(c, 11002, "账号已停用")
	case errors.Is(err, service.ErrInvalidRefresh):
		response.Unauthorized(c, 11003, "refresh token 无效或已注销")
	case errors.Is(err, service.ErrWrongPassword):
		response.BadRequest(c, 11004, "原密码错误")
	case errors.Is(err, service.ErrMemberNotFound):
		response.NotFound(c, 11005, "团队成员不存在")
	case errors.Is(err, service.ErrUsernameTaken):
		response.Conflict(c, 11006, "用户名已存在")
	default:
		response.InternalError(c)
	}
}
