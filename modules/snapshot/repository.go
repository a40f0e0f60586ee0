package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/Sid-047/reminderApp/domain/user"
)

const (
	// UserKey holds the user of the active session.
	UserKey = "user"

	// SchemaVersion is written into every record. Records without a version
	// are the bare JSON written by earlier releases and read as version 0.
	SchemaVersion = 1

	tasksKeyPrefix = "tasks-"
)

// ErrUnsupportedSchema is returned when a record was written by a newer release.
var ErrUnsupportedSchema = errors.New("unsupported snapshot schema version")

// TasksKey returns the storage key of a user's task collection.
func TasksKey(userID string) string {
	return tasksKeyPrefix + userID
}

// Repository reads and writes whole snapshots.
type Repository interface {
	// LoadTasks returns the user's collection. found is false when no
	// snapshot has ever been written for the user.
	LoadTasks(ctx context.Context, userID string) (tasks []domain.Task, found bool, err error)

	// SaveTasks replaces the user's collection.
	SaveTasks(ctx context.Context, userID string, tasks []domain.Task) error

	// LoadUser returns the session user, or nil when nobody is logged in.
	LoadUser(ctx context.Context) (*user.User, error)

	SaveUser(ctx context.Context, u user.User) error
	DeleteUser(ctx context.Context) error
}

type envelope struct {
	SchemaVersion *int            `json:"schemaVersion"`
	Data          json.RawMessage `json:"data"`
}

type repository struct {
	storage Storage
}

// NewRepository creates a Repository over the given storage.
func NewRepository(s Storage) Repository {
	return &repository{storage: s}
}

func (r *repository) LoadTasks(ctx context.Context, userID string) ([]domain.Task, bool, error) {
	tasks := []domain.Task{}
	found, err := r.read(ctx, TasksKey(userID), &tasks)
	if err != nil || !found {
		return nil, found, err
	}
	return tasks, true, nil
}

func (r *repository) SaveTasks(ctx context.Context, userID string, tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return r.write(ctx, TasksKey(userID), tasks)
}

func (r *repository) LoadUser(ctx context.Context) (*user.User, error) {
	var u user.User
	found, err := r.read(ctx, UserKey, &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

func (r *repository) SaveUser(ctx context.Context, u user.User) error {
	return r.write(ctx, UserKey, u)
}

func (r *repository) DeleteUser(ctx context.Context) error {
	return r.storage.DeleteWithContext(ctx, UserKey)
}

func (r *repository) read(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.storage.GetWithContext(ctx, key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}

	payload, err := unwrap(data)
	if err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (r *repository) write(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	version := SchemaVersion
	data, err := json.Marshal(envelope{SchemaVersion: &version, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return r.storage.SetWithContext(ctx, key, data, 0)
}

// unwrap returns the record payload, accepting both versioned envelopes and
// the unversioned bare arrays and objects.
func unwrap(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	if env.SchemaVersion == nil {
		return trimmed, nil
	}
	if *env.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, *env.SchemaVersion)
	}
	return env.Data, nil
}
