package dto

import "github.com/yigit/studentrecords/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// SignupRequest registers a new operator account
type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=150" example:"registrar"`
	Email    string `json:"email" binding:"required,email" example:"registrar@example.edu"`
	Password string `json:"password" binding:"required,min=8" example:"s3cretpass"`
	FullName string `json:"full_name" binding:"max=200" example:"Office Registrar"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"Bearer"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token    TokenResponse   `json:"token"`
	Operator models.Operator `json:"operator"`
}
