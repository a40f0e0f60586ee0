package api

import (
	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/Sid-047/reminderApp/domain/user"
	"github.com/Sid-047/reminderApp/events"
	"github.com/Sid-047/reminderApp/modules/notification"
)

// LoginRequest is the HTTP request for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the HTTP request for creating an account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// ForgotPasswordRequest is the HTTP request for a password reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the HTTP request for setting a new password.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and register.
type TokenResponse struct {
	User        *user.User `json:"user"`
	AccessToken string     `json:"access_token"`
	ExpiresIn   int64      `json:"expires_in"`
	TokenType   string     `json:"token_type"`
}

// MessageResponse acknowledges a request without data.
type MessageResponse struct {
	Message string `json:"message"`
}

// TaskResponse is returned by task mutations and lookups. PersistenceError is
// set when the change was applied but could not be saved.
type TaskResponse struct {
	Task             *domain.Task `json:"task"`
	PersistenceError string       `json:"persistenceError,omitempty"`
}

// DeleteResponse is returned by task deletion.
type DeleteResponse struct {
	Deleted          bool   `json:"deleted"`
	PersistenceError string `json:"persistenceError,omitempty"`
}

// ListTasksResponse is the HTTP response for listing tasks.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
}

// DashboardResponse groups tasks the way the dashboard shows them.
type DashboardResponse struct {
	Buckets domain.Buckets `json:"buckets"`
	Summary domain.Summary `json:"summary"`
}

// CalendarResponse lists one day's tasks.
type CalendarResponse struct {
	Date      string        `json:"date"`
	Pending   []domain.Task `json:"pending"`
	Completed []domain.Task `json:"completed"`
}

// MonthResponse marks the days of a month that have tasks.
type MonthResponse struct {
	Month   string             `json:"month"`
	Markers []domain.DayMarker `json:"markers"`
	Stats   domain.MonthStats  `json:"stats"`
}

// StatusResponse describes the caller's store and recent activity.
type StatusResponse struct {
	UserID      string                      `json:"userId"`
	Loaded      bool                        `json:"loaded"`
	Version     uint64                      `json:"version"`
	LastError   string                      `json:"lastError,omitempty"`
	LastFailure *events.SnapshotFailedEvent `json:"lastFailure,omitempty"`
	Activity    []notification.Entry        `json:"activity"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
