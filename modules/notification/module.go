package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Sid-047/reminderApp/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// maxEntries bounds the activity log kept per user.
const maxEntries = 50

// Entry is one line of a user's activity log.
type Entry struct {
	TaskID    string    `json:"task_id,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationsRequest asks for a user's activity.
type NotificationsRequest struct {
	UserID string `json:"user_id"`
}

// NotificationsResponse is a user's recent activity, newest last, and the last
// storage failure seen for that user.
type NotificationsResponse struct {
	Entries     []Entry                     `json:"entries"`
	LastFailure *events.SnapshotFailedEvent `json:"last_failure,omitempty"`
}

// NotificationModule records task activity and storage failures per user.
type NotificationModule struct {
	mu       sync.RWMutex
	entries  map[string][]Entry
	failures map[string]events.SnapshotFailedEvent
	now      func() time.Time
}

var _ mono.Module = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)
var _ mono.ServiceProviderModule = (*NotificationModule)(nil)

func NewModule() *NotificationModule {
	return &NotificationModule{
		entries:  make(map[string][]Entry),
		failures: make(map[string]events.SnapshotFailedEvent),
		now:      time.Now,
	}
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.SnapshotFailedV1, m.handleSnapshotFailed, m); err != nil {
		return fmt.Errorf("failed to register SnapshotFailed consumer: %w", err)
	}

	log.Printf("[notification] Registered event consumers: TaskCreated, TaskUpdated, TaskCompleted, TaskDeleted, SnapshotFailed")
	return nil
}

func (m *NotificationModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "notifications", json.Unmarshal, json.Marshal, m.handleNotifications,
	); err != nil {
		return fmt.Errorf("failed to register notifications service: %w", err)
	}
	log.Printf("[notification] Registered services: notifications")
	return nil
}

func (m *NotificationModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task created: %s - %s", event.TaskID, event.Title)
	m.record(event.UserID, Entry{
		TaskID:  event.TaskID,
		Type:    "task_created",
		Message: fmt.Sprintf("New %s priority task '%s' due %s", event.Priority, event.Title, event.Deadline.Format(time.RFC3339)),
	})
	return nil
}

func (m *NotificationModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task updated: %s fields %v", event.TaskID, event.Fields)
	m.record(event.UserID, Entry{
		TaskID:  event.TaskID,
		Type:    "task_updated",
		Message: fmt.Sprintf("Task %s updated (%d fields)", event.TaskID, len(event.Fields)),
	})
	return nil
}

func (m *NotificationModule) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task completed: %s by user %s", event.TaskID, event.UserID)
	m.record(event.UserID, Entry{
		TaskID:  event.TaskID,
		Type:    "task_completed",
		Message: fmt.Sprintf("Task %s completed!", event.TaskID),
	})
	return nil
}

func (m *NotificationModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task deleted: %s by user %s", event.TaskID, event.UserID)
	m.record(event.UserID, Entry{
		TaskID:  event.TaskID,
		Type:    "task_deleted",
		Message: fmt.Sprintf("Task %s deleted", event.TaskID),
	})
	return nil
}

func (m *NotificationModule) handleSnapshotFailed(_ context.Context, event events.SnapshotFailedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Snapshot %s failed for user %s (key %s): %s", event.Operation, event.UserID, event.Key, event.Error)

	m.mu.Lock()
	m.failures[event.UserID] = event
	m.mu.Unlock()

	m.record(event.UserID, Entry{
		Type:    "snapshot_failed",
		Message: fmt.Sprintf("Could not %s your tasks: %s", event.Operation, event.Error),
	})
	return nil
}

func (m *NotificationModule) handleNotifications(_ context.Context, req NotificationsRequest, _ *mono.Msg) (NotificationsResponse, error) {
	return m.Notifications(req.UserID), nil
}

func (m *NotificationModule) record(userID string, e Entry) {
	e.Timestamp = m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	list := append(m.entries[userID], e)
	if len(list) > maxEntries {
		list = list[len(list)-maxEntries:]
	}
	m.entries[userID] = list
}

// Notifications returns a copy of the user's activity.
func (m *NotificationModule) Notifications(userID string) NotificationsResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resp := NotificationsResponse{Entries: make([]Entry, len(m.entries[userID]))}
	copy(resp.Entries, m.entries[userID])
	if f, ok := m.failures[userID]; ok {
		resp.LastFailure = &f
	}
	return resp
}

func (m *NotificationModule) Start(_ context.Context) error {
	log.Println("[notification] Module started - listening for task events")
	return nil
}

func (m *NotificationModule) Stop(_ context.Context) error {
	log.Println("[notification] Module stopped")
	return nil
}
