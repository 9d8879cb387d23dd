package services

import (
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/logging"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/observability/performance"
	"github.com/bleonardo0/cobi-sub002/internal/infrastructure/security"
	"github.com/bleonardo0/cobi-sub002/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles operator authentication and JWT issuance.
type AuthService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthService creates a new authentication service
func NewAuthService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthService {
	return &AuthService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// AuthResult holds authentication result data
type AuthResult struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuthenticateOperator validates the operator credential and issues a
// JWT for the admin surface. The configured password may be a bcrypt
// hash or, for local development, plaintext.
func (a *AuthService) AuthenticateOperator(password string) *AuthResult {
	marker := a.perfTracker.StartOperation("auth:operator_login", "")
	defer marker.Complete()

	if config.OperatorPassword == "" {
		a.logger.Auth().Warn("Operator login attempted with no operator password configured")
		marker.SetSuccess(false)
		return &AuthResult{Success: false, Error: "Operator access not configured"}
	}

	authorized := false
	if err := bcrypt.CompareHashAndPassword([]byte(config.OperatorPassword), []byte(password)); err == nil {
		authorized = true
	}
	if !authorized && password == config.OperatorPassword {
		authorized = true
	}

	if !authorized {
		a.logger.Auth().Warn("Operator login rejected")
		marker.SetSuccess(false)
		return &AuthResult{Success: false, Error: "Invalid credentials"}
	}

	token, err := security.GenerateOperatorToken(config.JWTSecret, config.OperatorTokenTTL)
	if err != nil {
		a.logger.Auth().Error("Operator token generation failed", "error", err.Error())
		marker.SetError(err)
		return &AuthResult{Success: false, Error: "Token generation failed"}
	}

	a.logger.Auth().Info("Operator authenticated")
	marker.SetSuccess(true)
	return &AuthResult{Token: token, Role: "operator", Success: true}
}

// ValidateOperatorToken checks a bearer token and confirms the operator role.
func (a *AuthService) ValidateOperatorToken(tokenString string) bool {
	claims, err := security.ValidateJWT(tokenString, config.JWTSecret)
	if err != nil {
		return false
	}
	return security.GetRoleFromClaims(claims) == "operator"
}
