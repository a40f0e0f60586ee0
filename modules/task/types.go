package task

import (
	"context"

	domain "github.com/Sid-047/reminderApp/domain/task"
)

// ServiceError carries a typed failure across the request-reply boundary.
type ServiceError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Err converts the service error back into an error matching the domain
// sentinels. A nil receiver yields nil.
func (e *ServiceError) Err() error {
	if e == nil {
		return nil
	}
	return domain.FromKind(e.Kind, e.Message)
}

func toServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}
	return &ServiceError{Kind: domain.Kind(err), Message: err.Error()}
}

// LoadTasksRequest is the request for loading a user's collection.
type LoadTasksRequest struct {
	UserID string `json:"user_id"`
}

// AddTaskRequest is the request for creating a task.
type AddTaskRequest struct {
	UserID string       `json:"user_id"`
	Task   domain.Input `json:"task"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// UpdateTaskRequest is the request for patching a task.
type UpdateTaskRequest struct {
	UserID string       `json:"user_id"`
	TaskID string       `json:"task_id"`
	Patch  domain.Patch `json:"patch"`
}

// CompleteTaskRequest is the request for completing a task.
type CompleteTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// ListTasksRequest is the request for a filtered, sorted task list.
type ListTasksRequest struct {
	UserID    string           `json:"user_id"`
	Criteria  domain.Criteria  `json:"criteria"`
	SortBy    domain.SortField `json:"sort_by,omitempty"`
	Direction domain.Direction `json:"direction,omitempty"`
	Timezone  string           `json:"timezone,omitempty"`
}

// DashboardRequest is the request for the bucketed dashboard view.
type DashboardRequest struct {
	UserID    string           `json:"user_id"`
	Criteria  domain.Criteria  `json:"criteria"`
	SortBy    domain.SortField `json:"sort_by,omitempty"`
	Direction domain.Direction `json:"direction,omitempty"`
	Timezone  string           `json:"timezone,omitempty"`
}

// CalendarRequest is the request for the tasks due on one day.
// Date is formatted as YYYY-MM-DD; empty means today.
type CalendarRequest struct {
	UserID   string `json:"user_id"`
	Date     string `json:"date,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// MonthRequest is the request for the markers of one month.
// Month is formatted as YYYY-MM; empty means the current month.
type MonthRequest struct {
	UserID   string `json:"user_id"`
	Month    string `json:"month,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// SummaryRequest is the request for aggregate counts.
type SummaryRequest struct {
	UserID string `json:"user_id"`
}

// StatusRequest is the request for a store's state.
type StatusRequest struct {
	UserID string `json:"user_id"`
}

// TaskResponse is the response for a single task. Task is set when the
// operation was applied, even if Error reports a failed snapshot write.
type TaskResponse struct {
	Task  *domain.Task  `json:"task,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// TasksResponse is the response for a whole collection.
type TasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Error *ServiceError `json:"error,omitempty"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool          `json:"deleted"`
	Error   *ServiceError `json:"error,omitempty"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
	Error *ServiceError `json:"error,omitempty"`
}

// DashboardResponse is the response for the dashboard view.
type DashboardResponse struct {
	Buckets domain.Buckets `json:"buckets"`
	Summary domain.Summary `json:"summary"`
	Error   *ServiceError  `json:"error,omitempty"`
}

// CalendarResponse is the response for one calendar day.
type CalendarResponse struct {
	Date      string        `json:"date"`
	Pending   []domain.Task `json:"pending"`
	Completed []domain.Task `json:"completed"`
	Error     *ServiceError `json:"error,omitempty"`
}

// MonthResponse is the response for one calendar month.
type MonthResponse struct {
	Month   string             `json:"month"`
	Markers []domain.DayMarker `json:"markers"`
	Stats   domain.MonthStats  `json:"stats"`
	Error   *ServiceError      `json:"error,omitempty"`
}

// SummaryResponse is the response for aggregate counts.
type SummaryResponse struct {
	Summary domain.Summary `json:"summary"`
	Error   *ServiceError  `json:"error,omitempty"`
}

// StatusResponse describes a user's store.
type StatusResponse struct {
	UserID    string `json:"user_id"`
	Loaded    bool   `json:"loaded"`
	Version   uint64 `json:"version"`
	LastError string `json:"last_error,omitempty"`
}

// TaskPort defines the task operations available to driving adapters.
// Mutations return the applied result together with any persistence error.
type TaskPort interface {
	LoadTasks(ctx context.Context, userID string) ([]domain.Task, error)
	AddTask(ctx context.Context, userID string, in domain.Input) (*domain.Task, error)
	GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, patch domain.Patch) (*domain.Task, error)
	CompleteTask(ctx context.Context, userID, taskID string) (*domain.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) (bool, error)
	ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
	Dashboard(ctx context.Context, req *DashboardRequest) (*DashboardResponse, error)
	Calendar(ctx context.Context, req *CalendarRequest) (*CalendarResponse, error)
	Month(ctx context.Context, req *MonthRequest) (*MonthResponse, error)
	Summary(ctx context.Context, userID string) (*domain.Summary, error)
	Status(ctx context.Context, userID string) (*StatusResponse, error)
}
