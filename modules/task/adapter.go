package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// This is the adapter that implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// callService sends req to the named task service and decodes the reply into resp.
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
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// LoadTasks returns the user's whole collection via the load-tasks service.
func (a *taskAdapter) LoadTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	var resp TasksResponse
	if err := callService(ctx, a.container, "load-tasks", &LoadTasksRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, resp.Error.Err()
}

// AddTask creates a task via the add-task service.
func (a *taskAdapter) AddTask(ctx context.Context, userID string, in domain.Input) (*domain.Task, error) {
	var resp TaskResponse
	if err := callService(ctx, a.container, "add-task", &AddTaskRequest{UserID: userID, Task: in}, &resp); err != nil {
		return nil, err
	}
	return resp.Task, resp.Error.Err()
}

// GetTask retrieves a task via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	var resp TaskResponse
	if err := callService(ctx, a.container, "get-task", &GetTaskRequest{UserID: userID, TaskID: taskID}, &resp); err != nil {
		return nil, err
	}
	return resp.Task, resp.Error.Err()
}

// UpdateTask patches a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, userID, taskID string, patch domain.Patch) (*domain.Task, error) {
	var resp TaskResponse
	req := UpdateTaskRequest{UserID: userID, TaskID: taskID, Patch: patch}
	if err := callService(ctx, a.container, "update-task", &req, &resp); err != nil {
		return nil, err
	}
	return resp.Task, resp.Error.Err()
}

// CompleteTask marks a task as completed via the complete-task service.
func (a *taskAdapter) CompleteTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	var resp TaskResponse
	if err := callService(ctx, a.container, "complete-task", &CompleteTaskRequest{UserID: userID, TaskID: taskID}, &resp); err != nil {
		return nil, err
	}
	return resp.Task, resp.Error.Err()
}

// DeleteTask removes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, userID, taskID string) (bool, error) {
	var resp DeleteTaskResponse
	if err := callService(ctx, a.container, "delete-task", &DeleteTaskRequest{UserID: userID, TaskID: taskID}, &resp); err != nil {
		return false, err
	}
	return resp.Deleted, resp.Error.Err()
}

// ListTasks lists filtered, sorted tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	var resp ListTasksResponse
	if err := callService(ctx, a.container, "list-tasks", req, &resp); err != nil {
		return nil, err
	}
	return &resp, resp.Error.Err()
}

// Dashboard returns the bucketed view via the dashboard service.
func (a *taskAdapter) Dashboard(ctx context.Context, req *DashboardRequest) (*DashboardResponse, error) {
	var resp DashboardResponse
	if err := callService(ctx, a.container, "dashboard", req, &resp); err != nil {
		return nil, err
	}
	return &resp, resp.Error.Err()
}

// Calendar returns one day's tasks via the calendar service.
func (a *taskAdapter) Calendar(ctx context.Context, req *CalendarRequest) (*CalendarResponse, error) {
	var resp CalendarResponse
	if err := callService(ctx, a.container, "calendar", req, &resp); err != nil {
		return nil, err
	}
	return &resp, resp.Error.Err()
}

// Month returns one month's markers via the month service.
func (a *taskAdapter) Month(ctx context.Context, req *MonthRequest) (*MonthResponse, error) {
	var resp MonthResponse
	if err := callService(ctx, a.container, "month", req, &resp); err != nil {
		return nil, err
	}
	return &resp, resp.Error.Err()
}

// Summary returns aggregate counts via the summary service.
func (a *taskAdapter) Summary(ctx context.Context, userID string) (*domain.Summary, error) {
	var resp SummaryResponse
	if err := callService(ctx, a.container, "summary", &SummaryRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return &resp.Summary, resp.Error.Err()
}

// Status returns the state of the user's store via the store-status service.
func (a *taskAdapter) Status(ctx context.Context, userID string) (*StatusResponse, error) {
	var resp StatusResponse
	if err := callService(ctx, a.container, "store-status", &StatusRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
