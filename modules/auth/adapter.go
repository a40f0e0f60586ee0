package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Sid-047/reminderApp/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ErrRejected wraps a request the auth module refused, such as a malformed email.
var ErrRejected = errors.New("auth request rejected")

// AuthPort defines the interface for authentication operations.
// This is the port that other modules use to access auth functionality.
type AuthPort interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Register(ctx context.Context, email, password, name string) (*AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	ValidateToken(ctx context.Context, token string) (*user.Claims, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

var _ AuthPort = (*AuthAdapter)(nil)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// callService sends req to the named auth service and decodes the reply into resp.
func callService[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

// Login authenticates a user and returns an access token.
func (a *AuthAdapter) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := callService(ctx, a.container, "login", &LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRejected, resp.Error)
	}
	return &resp, nil
}

// Register creates a user and returns an access token.
func (a *AuthAdapter) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	var resp AuthResponse
	req := RegisterRequest{Email: email, Password: password, Name: name}
	if err := callService(ctx, a.container, "register", &req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRejected, resp.Error)
	}
	return &resp, nil
}

// Logout ends the user's session.
func (a *AuthAdapter) Logout(ctx context.Context, userID string) error {
	var resp AckResponse
	if err := callService(ctx, a.container, "logout", &LogoutRequest{UserID: userID}, &resp); err != nil {
		return err
	}
	return ack(resp)
}

// ValidateToken validates an access token and returns claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*user.Claims, error) {
	var resp ValidateTokenResponse
	if err := callService(ctx, a.container, "validate-token", &ValidateTokenRequest{Token: token}, &resp); err != nil {
		return nil, err
	}

	if !resp.Valid {
		if resp.Error == "token expired" {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	return &user.Claims{
		UserID: resp.UserID,
		Email:  resp.Email,
		Name:   resp.Name,
	}, nil
}

// RequestPasswordReset asks for a password reset link.
func (a *AuthAdapter) RequestPasswordReset(ctx context.Context, email string) error {
	var resp AckResponse
	if err := callService(ctx, a.container, "request-password-reset", &PasswordResetRequest{Email: email}, &resp); err != nil {
		return err
	}
	return ack(resp)
}

// ResetPassword sets a new password.
func (a *AuthAdapter) ResetPassword(ctx context.Context, token, password string) error {
	var resp AckResponse
	if err := callService(ctx, a.container, "reset-password", &ResetPasswordRequest{Token: token, Password: password}, &resp); err != nil {
		return err
	}
	return ack(resp)
}

func ack(resp AckResponse) error {
	if !resp.OK {
		return fmt.Errorf("%w: %s", ErrRejected, resp.Error)
	}
	return nil
}
