package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/Sid-047/reminderApp/domain/user"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		SecretKey: "test-secret-key",
		TTL:       15 * time.Minute,
		Issuer:    "test-issuer",
	}
}

func TestTokenIssuer_IssueAndValidate(t *testing.T) {
	issuer := NewTokenIssuer(testTokenConfig())
	u := user.User{ID: "user-123", Email: "test@example.com", Name: "Test User"}

	token, err := issuer.Issue(u)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != u.ID {
		t.Errorf("claims.UserID = %v, want %v", claims.UserID, u.ID)
	}
	if claims.Email != u.Email {
		t.Errorf("claims.Email = %v, want %v", claims.Email, u.Email)
	}
	if claims.Name != u.Name {
		t.Errorf("claims.Name = %v, want %v", claims.Name, u.Name)
	}
	if issuer.TTL() != 900 {
		t.Errorf("TTL() = %d, want 900", issuer.TTL())
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer(testTokenConfig())
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := issuer.Issue(user.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Validate(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Validate() error = %v, want %v", err, ErrExpiredToken)
	}
}

func TestTokenIssuer_Invalid(t *testing.T) {
	issuer := NewTokenIssuer(testTokenConfig())

	other := testTokenConfig()
	other.SecretKey = "another-secret"
	forged, err := NewTokenIssuer(other).Issue(user.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	foreign := testTokenConfig()
	foreign.Issuer = "someone-else"
	wrongIssuer, err := NewTokenIssuer(foreign).Issue(user.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	noSubject, err := issuer.Issue(user.User{})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"wrong secret", forged},
		{"wrong issuer", wrongIssuer},
		{"no user", noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}
