package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// CreateMemberRequest 管理员创建团队成员
type CreateMemberRequest struct {
	Username    string `json:"username"     binding:"required,min=2,max=50"`
	DisplayName string `json:"display_name" binding:"required,max=100"`
	Password    string `json:"password"     binding:"required,min=8,max=64"`
	Role        string `json:"role"         binding:"omitempty,oneof=admin member"`
}

// MemberResponse 团队成员信息（脱敏）
type MemberResponse struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
}

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int            `json:"expires_in"` // Access Token 有效期（秒）
	Member       MemberResponse `json:"member"`
}

// [自证通过] internal/dto/auth.go
