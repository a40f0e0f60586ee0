package task

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/Sid-047/reminderApp/events"
	"github.com/go-monolith/mono"
)

const monthLayout = "2006-01"

// store returns the loaded store of userID. A store whose seed could not be
// written is still usable; a store whose snapshot could not be read is not.
func (m *TaskModule) store(ctx context.Context, userID string) (*Store, error) {
	if userID == "" {
		return nil, &domain.ValidationError{Field: "userId", Reason: "must not be empty"}
	}
	s, err := m.registry.Store(ctx, userID)
	if err != nil && (s == nil || IsLoadFailure(err)) {
		return nil, err
	}
	return s, nil
}

// clock returns the current time in the named IANA zone, or the server's
// zone when tz is empty.
func (m *TaskModule) clock(tz string) (time.Time, error) {
	now := m.now()
	if tz == "" {
		return now, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: "timezone", Reason: fmt.Sprintf("unknown zone %q", tz)}
	}
	return now.In(loc), nil
}

// view applies the criteria and the optional ordering to tasks.
func view(tasks []domain.Task, criteria domain.Criteria, sortBy domain.SortField, dir domain.Direction, now time.Time) ([]domain.Task, error) {
	if err := ValidateView(criteria, sortBy, dir); err != nil {
		return nil, err
	}
	out := domain.Filter(tasks, criteria, now)
	if sortBy != "" {
		out = domain.Sort(out, sortBy, dir)
	}
	return out, nil
}

// ValidateView rejects filter, sort and direction values outside the known sets.
func ValidateView(c domain.Criteria, sortBy domain.SortField, dir domain.Direction) error {
	if c.Priority != "" && c.Priority != domain.AnyPriority && !c.Priority.Valid() {
		return &domain.ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", c.Priority)}
	}
	switch c.Status {
	case "", domain.StatusAll, domain.StatusCompleted, domain.StatusPending:
	default:
		return &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", c.Status)}
	}
	switch c.Date {
	case "", domain.DateAll, domain.DateToday, domain.DateUpcoming, domain.DateOverdue:
	default:
		return &domain.ValidationError{Field: "date", Reason: fmt.Sprintf("unknown date filter %q", c.Date)}
	}
	switch sortBy {
	case "", domain.SortByDeadline, domain.SortByPriority, domain.SortByTitle:
	default:
		return &domain.ValidationError{Field: "sort", Reason: fmt.Sprintf("unknown sort field %q", sortBy)}
	}
	switch dir {
	case "", domain.Ascending, domain.Descending:
	default:
		return &domain.ValidationError{Field: "order", Reason: fmt.Sprintf("unknown direction %q", dir)}
	}
	return nil
}

// loadTasks handles the load-tasks service request.
func (m *TaskModule) loadTasks(ctx context.Context, req LoadTasksRequest, _ *mono.Msg) (TasksResponse, error) {
	s, err := m.store(ctx, req.UserID)
	if err != nil {
		return TasksResponse{Tasks: []domain.Task{}, Error: toServiceError(err)}, nil
	}
	return TasksResponse{Tasks: s.Tasks(), Error: toServiceError(s.Err())}, nil
}

// addTask handles the add-task service request.
func (m *TaskModule) addTask(ctx context.Context, req AddTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	s, err := m.store(ctx, req.UserID)
	if err != nil {
		return TaskResponse{Error: toServiceError(err)}, nil
	}

	t, err := s.Add(ctx, req.Task)
	if err != nil && !errors.Is(err, domain.ErrPersistence) {
		return TaskResponse{Error: toServiceError(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskCreatedEvent{
			TaskID:    t.ID,
			Title:     t.Title,
			Priority:  string(t.Priority),
			Deadline:  t.Deadline,
			UserID:    t.UserID,
			CreatedAt: t.CreatedAt,
		}
		if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			// Event publishing is best-effort; log but don't fail the operation
			log.Printf("[task] Warning: failed to publish TaskCreated event for task %s: %v", t.ID, err)
		}
	}

	return TaskResponse{Task: &t, Error: toServiceError(err)}, nil
}

// getTask handles the get-task service request.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	s, err := m.store(ctx, req.UserID)
	if err != nil {
		return TaskResponse{Error: toServiceError(err)}, nil
	}
	t, err := s.Get(req.TaskID)
	if err != nil {
		return TaskResponse{Error: toServiceError(err)}, nil
	}
	return TaskResponse{Task: &t}, nil
}

// updateTask handles the update-task service request.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	s, err := m.store(ctx, req.UserID)
	if err != nil {
		return TaskResponse{Error: toServiceError(err)}, nil
	}

	t, err := s.Update(ctx, req.TaskID, req.Patch)
	if err != nil && !errors.Is(err, domain.ErrPersistence) {
		return TaskResponse{Error: toServiceError(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskUpdatedEvent{
			TaskID:    t.ID,
			UserID:    t.UserID,
			Fields:    patchedFields(req.Patch),
			UpdatedAt: m.now(),
		}
		if err := events.TaskUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskUpdated event for task %s: %v", t.ID, err)
		}
	}

	return TaskResponse{Task: &t, Error: toServiceError(err)}, nil
}

// completeTask handles the complete-task service request.
func (m *TaskModule) completeTask(ctx context.Context, req CompleteTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	s, err := m.store(ctx, req.UserID)
	if err != nil {
		return TaskResponse{Error: toServiceError(err)}, nil
	}

	t, err := s.Complete(ctx, req.TaskID)
	if err != nil && !errors.Is(err, domain.ErrPersistence) {
		return TaskResponse{Error: toServiceError(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskCompletedEvent{
			TaskID:      t.ID,
			UserID:      t.UserID,
			CompletedAt: m.now(),
		}
		if err := events.TaskCompletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskCompleted event for task %s: %v", t.ID, err)
		}
	}

	return TaskResponse{Task: &t, Error: toServiceError(err)}, nil
}

// deleteTask handles the delete-task service request.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	s, err := m.store(ctx, req.UserID)
	if err != nil {
		return DeleteTaskResponse{Error: toServiceError(err)}, nil
	}

	deleted, err := s.Delete(ctx, req.TaskID)
	if err != nil && !errors.Is(err, domain.ErrPersistence) {
		return DeleteTaskResponse{Error: toServiceError(err)}, nil
	}

	if deleted && m.eventBus != nil {
		event := events.TaskDeletedEvent{
			TaskID:    req.TaskID,
			UserID:    req.UserID,
			DeletedAt: m.now(),
		}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskDeleted event for task %s: %v", req.TaskID, err)
		}
	}

	return DeleteTaskResponse{Deleted: deleted, Error: toServiceError(err)}, nil
}

// listTasks handles the list-tasks service request.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	now, err := m.clock(req.Timezone)
	if err != nil {
		return ListTasksResponse{Tasks: []domain.Task{}, Error: toServiceError(err)}, nil
	}
	s, err := m.store(ctx, req.UserID)
	if err != nil {
		return ListTasksResponse{Tasks: []domain.Task{}, Error: toServiceError(err)}, nil
	}

	tasks, err := view(s.Tasks(), req.Criteria, req.SortBy, req.Direction, now)
	if err != nil {
		return ListTasksResponse{Tasks: []domain.Task{}, Error: toServiceError(err)}, nil
	}
	return ListTasksResponse{Tasks: tasks, Total: len(tasks)}, nil
}

// dashboard handles the dashboard service request. Buckets follow the
// filters; the summary always covers the whole collection.
func (m *TaskModule) dashboard(ctx context.Context, req DashboardRequest, _ *mono.Msg) (DashboardResponse, error) {
	now, err := m.clock(req.Timezone)
	if err != nil {
		return DashboardResponse{Error: toServiceError(err)}, nil
	}
	s, err := m.store(ctx, req.UserID)
	if err != nil {
		return DashboardResponse{Error: toServiceError(err)}, nil
	}

	all := s.Tasks()
	tasks, err := view(all, req.Criteria, req.SortBy, req.Direction, now)
	if err != nil {
		return DashboardResponse{Error: toServiceError(err)}, nil
	}
	return DashboardResponse{
		Buckets: domain.Bucketize(tasks, now),
		Summary: domain.Summarize(all),
	}, nil
}

// calendar handles the calendar service request.
func (m *TaskModule) calendar(ctx context.Context, req CalendarRequest, _ *mono.Msg) (CalendarResponse, error) {
	now, err := m.clock(req.Timezone)
	if err != nil {
		return CalendarResponse{Error: toServiceError(err)}, nil
	}
	date := now
	if req.Date != "" {
		date, err = time.ParseInLocation(domain.DateLayout, req.Date, now.Location())
		if err != nil {
			return CalendarResponse{Error: toServiceError(&domain.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"})}, nil
		}
	}

	s, err := m.store(ctx, req.UserID)
	if err != nil {
		return CalendarResponse{Error: toServiceError(err)}, nil
	}

	pending, completed := domain.SplitByStatus(domain.OnDate(s.Tasks(), date))
	return CalendarResponse{
		Date:      date.Format(domain.DateLayout),
		Pending:   pending,
		Completed: completed,
	}, nil
}

// month handles the month service request.
func (m *TaskModule) month(ctx context.Context, req MonthRequest, _ *mono.Msg) (MonthResponse, error) {
	now, err := m.clock(req.Timezone)
	if err != nil {
		return MonthResponse{Error: toServiceError(err)}, nil
	}
	month := now
	if req.Month != "" {
		month, err = time.ParseInLocation(monthLayout, req.Month, now.Location())
		if err != nil {
			return MonthResponse{Error: toServiceError(&domain.ValidationError{Field: "month", Reason: "must be YYYY-MM"})}, nil
		}
	}

	s, err := m.store(ctx, req.UserID)
	if err != nil {
		return MonthResponse{Error: toServiceError(err)}, nil
	}

	tasks := s.Tasks()
	return MonthResponse{
		Month:   month.Format(monthLayout),
		Markers: domain.MonthMarkers(tasks, month.Year(), month.Month(), month.Location()),
		Stats:   domain.SummarizeMonth(tasks, month.Year(), month.Month(), month.Location()),
	}, nil
}

// summary handles the summary service request.
func (m *TaskModule) summary(ctx context.Context, req SummaryRequest, _ *mono.Msg) (SummaryResponse, error) {
	s, err := m.store(ctx, req.UserID)
	if err != nil {
		return SummaryResponse{Error: toServiceError(err)}, nil
	}
	return SummaryResponse{Summary: domain.Summarize(s.Tasks())}, nil
}

// status handles the store-status service request. It never loads a store.
func (m *TaskModule) status(_ context.Context, req StatusRequest, _ *mono.Msg) (StatusResponse, error) {
	resp := StatusResponse{UserID: req.UserID}
	if !m.registry.Loaded(req.UserID) {
		return resp, nil
	}
	s, err := m.registry.Store(context.Background(), req.UserID)
	if err != nil && s == nil {
		return resp, nil
	}
	resp.Loaded = true
	resp.Version = s.Version()
	if err := s.Err(); err != nil {
		resp.LastError = err.Error()
	}
	return resp, nil
}

func patchedFields(p domain.Patch) []string {
	fields := make([]string, 0, 5)
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Completed != nil {
		fields = append(fields, "completed")
	}
	if p.Deadline != nil {
		fields = append(fields, "deadline")
	}
	if p.Priority != nil {
		fields = append(fields, "priority")
	}
	return fields
}
