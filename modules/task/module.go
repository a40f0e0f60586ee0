package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/Sid-047/reminderApp/events"
	"github.com/Sid-047/reminderApp/modules/snapshot"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskModule owns the per-user task stores and serves them over request-reply.
type TaskModule struct {
	snapshots *snapshot.PluginModule
	repo      snapshot.Repository
	registry  *Registry
	eventBus  mono.EventBus
	now       func() time.Time
	opts      []Option
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.UsePluginModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates the task module. Options apply to every store it creates.
func NewModule(opts ...Option) *TaskModule {
	return &TaskModule{
		now:  time.Now,
		opts: opts,
	}
}

// NewModuleWithRepository creates a task module that persists through repo
// instead of the snapshot plugin.
func NewModuleWithRepository(repo snapshot.Repository, opts ...Option) *TaskModule {
	m := NewModule(opts...)
	m.repo = repo
	return m
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias == "snapshot" {
		if p, ok := plugin.(*snapshot.PluginModule); ok {
			m.snapshots = p
			log.Println("[task] Snapshot plugin injected")
		}
	}
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
		events.SnapshotFailedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "load-tasks", json.Unmarshal, json.Marshal, m.loadTasks,
	); err != nil {
		return fmt.Errorf("failed to register load-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "add-task", json.Unmarshal, json.Marshal, m.addTask,
	); err != nil {
		return fmt.Errorf("failed to register add-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "complete-task", json.Unmarshal, json.Marshal, m.completeTask,
	); err != nil {
		return fmt.Errorf("failed to register complete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "dashboard", json.Unmarshal, json.Marshal, m.dashboard,
	); err != nil {
		return fmt.Errorf("failed to register dashboard service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "calendar", json.Unmarshal, json.Marshal, m.calendar,
	); err != nil {
		return fmt.Errorf("failed to register calendar service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "month", json.Unmarshal, json.Marshal, m.month,
	); err != nil {
		return fmt.Errorf("failed to register month service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "summary", json.Unmarshal, json.Marshal, m.summary,
	); err != nil {
		return fmt.Errorf("failed to register summary service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "store-status", json.Unmarshal, json.Marshal, m.status,
	); err != nil {
		return fmt.Errorf("failed to register store-status service: %w", err)
	}

	log.Printf("[task] Registered services: load-tasks, add-task, get-task, update-task, complete-task, delete-task, list-tasks, dashboard, calendar, month, summary, store-status")
	return nil
}

func (m *TaskModule) Start(_ context.Context) error {
	if m.repo == nil {
		if m.snapshots == nil {
			return fmt.Errorf("snapshot plugin not set - ensure 'snapshot' plugin is registered")
		}
		m.repo = m.snapshots.Port()
	}
	if m.repo == nil {
		return fmt.Errorf("snapshot repository not available")
	}
	if m.eventBus == nil {
		log.Println("[task] Warning: eventBus not set, events will not be published")
	}

	opts := append([]Option{WithClock(m.now), WithFailureHook(m.publishSnapshotFailed)}, m.opts...)
	m.registry = NewRegistry(m.repo, opts...)

	log.Println("[task] Module started (uses plugin: snapshot)")
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	log.Println("[task] Module stopped")
	return nil
}

// Health reports the number of loaded user stores.
func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if m.registry == nil {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"loaded_users": m.registry.Len(),
		},
	}
}

// Registry returns the store registry. It is nil until Start.
func (m *TaskModule) Registry() *Registry {
	return m.registry
}

func (m *TaskModule) publishSnapshotFailed(userID string, perr *domain.PersistenceError) {
	if m.eventBus == nil {
		return
	}
	event := events.SnapshotFailedEvent{
		UserID:     userID,
		Key:        perr.Key,
		Operation:  perr.Op,
		Error:      perr.Err.Error(),
		OccurredAt: m.now(),
	}
	if err := events.SnapshotFailedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[task] Warning: failed to publish SnapshotFailed event for user %s: %v", userID, err)
	}
}
