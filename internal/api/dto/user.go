package dto

// RegisterDTO 注册请求
type RegisterDTO struct {
	Username string `json:"username" binding:"required,min=6,max=20"`
	Password string `json:"password" binding:"required,min=6,max=20"`
}

// CredentialDTO 登录请求
type CredentialDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenDTO 登录返回
type TokenDTO struct {
	UserID uint64 `json:"user_id"`
	Token  string `json:"token"`
}
