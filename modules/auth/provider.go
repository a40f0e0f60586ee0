package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/Sid-047/reminderApp/domain/user"
	"github.com/google/uuid"
)

// DefaultName is the display name of users who log in without registering.
const DefaultName = "Demo User"

var (
	// ErrInvalidEmail is returned when the email address cannot be parsed.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrMissingPassword is returned when the password is empty.
	ErrMissingPassword = errors.New("password is required")
)

// identityNamespace scopes the name-based user IDs.
var identityNamespace = uuid.MustParse("6f1c2a8e-3d4b-4e7a-9c15-0b8f2d6e4a31")

// IdentityProvider authenticates users.
type IdentityProvider interface {
	Login(ctx context.Context, email, password string) (*user.User, error)
	Register(ctx context.Context, email, password, name string) (*user.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// MockProvider accepts any password for a well-formed email. The same email
// always maps to the same user ID, so each address keeps its own tasks.
type MockProvider struct {
	logger *slog.Logger
}

var _ IdentityProvider = (*MockProvider)(nil)

// NewMockProvider creates a MockProvider. A nil logger uses slog.Default.
func NewMockProvider(logger *slog.Logger) *MockProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockProvider{logger: logger}
}

// Login returns the user identified by email, named DefaultName.
func (p *MockProvider) Login(_ context.Context, email, password string) (*user.User, error) {
	addr, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrMissingPassword
	}
	p.logger.Info("mock login", "email", addr)
	return &user.User{ID: UserID(addr), Email: addr, Name: DefaultName}, nil
}

// Register returns the user identified by email with the given name.
func (p *MockProvider) Register(_ context.Context, email, password, name string) (*user.User, error) {
	addr, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrMissingPassword
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	p.logger.Info("mock registration", "email", addr, "name", name)
	return &user.User{ID: UserID(addr), Email: addr, Name: name}, nil
}

// RequestPasswordReset only logs the request.
func (p *MockProvider) RequestPasswordReset(_ context.Context, email string) error {
	addr, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	p.logger.Info("password reset requested", "email", addr)
	return nil
}

// ResetPassword only logs the reset.
func (p *MockProvider) ResetPassword(_ context.Context, token, password string) error {
	if password == "" {
		return ErrMissingPassword
	}
	p.logger.Info("password reset", "token_present", token != "")
	return nil
}

// UserID derives the stable user ID of an email address.
func UserID(email string) string {
	return uuid.NewSHA1(identityNamespace, []byte(strings.ToLower(email))).String()
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}
