package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/Sid-047/reminderApp/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthModule provides login and token services.
type AuthModule struct {
	provider IdentityProvider
	tokens   *TokenIssuer
	config   TokenConfig
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates an AuthModule. A nil provider uses the mock provider.
func NewModule(provider IdentityProvider, config TokenConfig) *AuthModule {
	if provider == nil {
		provider = NewMockProvider(nil)
	}
	return &AuthModule{provider: provider, config: config}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start initializes the token issuer.
func (m *AuthModule) Start(_ context.Context) error {
	if m.config.SecretKey == "" {
		return fmt.Errorf("token secret key must not be empty")
	}
	if m.config.TTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}
	m.tokens = NewTokenIssuer(m.config)
	log.Printf("[auth] Module started (issuer: %s, token ttl: %s)", m.config.Issuer, m.config.TTL)
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.tokens == nil {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "register", json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "logout", json.Unmarshal, json.Marshal, m.handleLogout,
	); err != nil {
		return fmt.Errorf("failed to register logout service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "request-password-reset", json.Unmarshal, json.Marshal, m.handleRequestPasswordReset,
	); err != nil {
		return fmt.Errorf("failed to register request-password-reset service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "reset-password", json.Unmarshal, json.Marshal, m.handleResetPassword,
	); err != nil {
		return fmt.Errorf("failed to register reset-password service: %w", err)
	}

	log.Printf("[auth] Registered services: login, register, logout, validate-token, request-password-reset, reset-password")
	return nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (AuthResponse, error) {
	u, err := m.provider.Login(ctx, req.Email, req.Password)
	if err != nil {
		return AuthResponse{Error: err.Error()}, nil
	}
	return m.issue(*u)
}

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (AuthResponse, error) {
	u, err := m.provider.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return AuthResponse{Error: err.Error()}, nil
	}
	return m.issue(*u)
}

func (m *AuthModule) issue(u user.User) (AuthResponse, error) {
	token, err := m.tokens.Issue(u)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return AuthResponse{
		User:        &u,
		AccessToken: token,
		ExpiresIn:   m.tokens.TTL(),
		TokenType:   "Bearer",
	}, nil
}

// handleLogout acknowledges a logout. Tokens are stateless and expire on their own.
func (m *AuthModule) handleLogout(_ context.Context, req LogoutRequest, _ *mono.Msg) (AckResponse, error) {
	log.Printf("[auth] User %s logged out", req.UserID)
	return AckResponse{OK: true}, nil
}

func (m *AuthModule) handleValidateToken(_ context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.tokens.Validate(req.Token)
	if err != nil {
		errMsg := "invalid token"
		if errors.Is(err, ErrExpiredToken) {
			errMsg = "token expired"
		}
		return ValidateTokenResponse{Valid: false, Error: errMsg}, nil
	}

	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

func (m *AuthModule) handleRequestPasswordReset(ctx context.Context, req PasswordResetRequest, _ *mono.Msg) (AckResponse, error) {
	if err := m.provider.RequestPasswordReset(ctx, req.Email); err != nil {
		return AckResponse{Error: err.Error()}, nil
	}
	return AckResponse{OK: true}, nil
}

func (m *AuthModule) handleResetPassword(ctx context.Context, req ResetPasswordRequest, _ *mono.Msg) (AckResponse, error) {
	if err := m.provider.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return AckResponse{Error: err.Error()}, nil
	}
	return AckResponse{OK: true}, nil
}
