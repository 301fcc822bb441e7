package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/app/repositories"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/auth"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// AuthService handles operator signup and login
type AuthService struct {
	operatorRepo repositories.IOperatorRepository
	jwtService   *auth.JWTService
	clock        Clock
}

// NewAuthService creates a new AuthService
func NewAuthService(operatorRepo repositories.IOperatorRepository, jwtService *auth.JWTService, clock Clock) *AuthService {
	return &AuthService{
		operatorRepo: operatorRepo,
		jwtService:   jwtService,
		clock:        clock,
	}
}

// validatePassword requires at least one letter and one digit
func validatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.NewValidationError("password", "password must be at least 8 characters long")
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperrors.NewValidationError("password", "password must be at most 72 bytes long")
	}

	var hasLetter, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.NewValidationError("password", "password must contain at least one letter and one digit")
	}
	return nil
}

// Register creates an operator account and signs it in
func (s *AuthService) Register(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" {
		return nil, apperrors.NewValidationError("username", "username cannot be empty")
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.operatorRepo.Exists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("error checking operator: %w", err)
	}
	if exists {
		return nil, apperrors.ErrOperatorAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	operator := &models.Operator{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		IsActive:     true,
	}
	if err := s.operatorRepo.Create(ctx, operator); err != nil {
		return nil, err
	}

	logger.Info().Int64("operatorID", operator.ID).Str("username", operator.Username).Msg("Operator registered")
	return s.issue(operator)
}

// Login verifies credentials and returns an access token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	operator, err := s.operatorRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, apperrors.ErrOperatorNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !operator.IsActive || !auth.CheckPassword(operator.PasswordHash, req.Password) {
		logger.Warn().Str("username", req.Username).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	now := s.clock.now()
	if err := s.operatorRepo.TouchLastLogin(ctx, operator.ID, now); err != nil {
		logger.Warn().Err(err).Int64("operatorID", operator.ID).Msg("Could not record last login")
	} else {
		operator.LastLoginAt = &now
	}
	return s.issue(operator)
}

func (s *AuthService) issue(operator *models.Operator) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateAccessToken(operator)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(expiresIn),
		},
		Operator: *operator,
	}, nil
}
