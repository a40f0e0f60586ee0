package task

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/Sid-047/reminderApp/modules/snapshot"
	"github.com/google/uuid"
)

// Persistence operations reported in PersistenceError.Op.
const (
	OpLoad = "load"
	OpSave = "save"
)

// FailureHook is called after a snapshot read or write fails.
type FailureHook func(userID string, err *domain.PersistenceError)

// Store holds the in-memory task collection of the active user and writes
// the whole collection back after every mutation. All methods are safe for
// concurrent use; operations are applied one at a time in arrival order.
type Store struct {
	mu sync.Mutex

	repo      snapshot.Repository
	now       func() time.Time
	newID     func() string
	seed      SeedFunc
	logger    *slog.Logger
	onFailure FailureHook

	userID  string
	tasks   []domain.Task
	err     error
	version uint64
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for creation stamps and seeding.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the task id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithSeeder sets the collection used for users without a snapshot.
func WithSeeder(seed SeedFunc) Option {
	return func(s *Store) { s.seed = seed }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithFailureHook registers a callback for persistence failures.
func WithFailureHook(hook FailureHook) Option {
	return func(s *Store) { s.onFailure = hook }
}

// NewStore creates an empty store with no active user.
func NewStore(repo snapshot.Repository, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		seed:   SampleTasks,
		logger: slog.Default(),
		tasks:  []domain.Task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load makes userID the active user and reads their collection. Tasks in the
// snapshot that belong to another user are dropped. A user with
// no snapshot gets the seed collection, which is persisted immediately. When
// the snapshot cannot be read the store is left with an empty collection and
// a PersistenceError is returned.
func (s *Store) Load(ctx context.Context, userID string) ([]domain.Task, error) {
	if userID == "" {
		return nil, &domain.ValidationError{Field: "userId", Reason: "must not be empty"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = userID
	s.version++

	tasks, found, err := s.repo.LoadTasks(context.WithoutCancel(ctx), userID)
	if err != nil {
		s.tasks = []domain.Task{}
		return nil, s.fail(OpLoad, err)
	}

	if found {
		owned := slices.DeleteFunc(tasks, func(t domain.Task) bool { return t.UserID != userID })
		if dropped := len(tasks) - len(owned); dropped > 0 {
			s.logger.Warn("dropped tasks owned by another user", "user_id", userID, "count", dropped)
		}
		s.tasks = owned
		s.err = nil
		return slices.Clone(s.tasks), nil
	}

	s.tasks = s.seed(userID, s.now(), s.newID)
	s.logger.Info("seeded task collection", "user_id", userID, "count", len(s.tasks))
	return slices.Clone(s.tasks), s.persist(ctx)
}

// Add validates in and appends a new task owned by the active user. The
// returned task is valid even when a PersistenceError is returned with it.
func (s *Store) Add(ctx context.Context, in domain.Input) (domain.Task, error) {
	if err := in.Validate(); err != nil {
		return domain.Task{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == "" {
		return domain.Task{}, &domain.ValidationError{Field: "userId", Reason: "no active user"}
	}

	id := s.newID()
	for s.indexOf(id) >= 0 {
		id = s.newID()
	}

	t := domain.Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		Deadline:    in.Deadline,
		Priority:    in.Priority,
		CreatedAt:   s.now(),
		UserID:      s.userID,
	}
	s.tasks = append(s.tasks, t)
	s.version++

	return t, s.persist(ctx)
}

// Update merges patch into the task with the given id, keeping its position.
func (s *Store) Update(ctx context.Context, id string, patch domain.Patch) (domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return domain.Task{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, id, patch)
}

// Complete marks the task as completed. Completing a completed task is a no-op
// apart from the snapshot write.
func (s *Store) Complete(ctx context.Context, id string) (domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	done := true
	return s.update(ctx, id, domain.Patch{Completed: &done})
}

func (s *Store) update(ctx context.Context, id string, patch domain.Patch) (domain.Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return domain.Task{}, &domain.NotFoundError{ID: id}
	}

	s.tasks[i] = patch.Apply(s.tasks[i])
	s.version++

	return s.tasks[i], s.persist(ctx)
}

// Delete removes the task with the given id. Deleting an absent id succeeds
// without writing; deleted reports whether anything was removed.
func (s *Store) Delete(ctx context.Context, id string) (deleted bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.version++

	return true, s.persist(ctx)
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Task{}, &domain.NotFoundError{ID: id}
	}
	return s.tasks[i], nil
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// UserID returns the active user, or "" before the first Load.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Err returns the most recent persistence failure, cleared by the next
// successful read or write.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Version increases with every change to the collection. Derived views can
// be cached against it.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t domain.Task) bool { return t.ID == id })
}

// persist writes the whole collection. The write is not cancelled with ctx:
// once the in-memory change is applied the snapshot must follow it.
func (s *Store) persist(ctx context.Context) error {
	if err := s.repo.SaveTasks(context.WithoutCancel(ctx), s.userID, slices.Clone(s.tasks)); err != nil {
		return s.fail(OpSave, err)
	}
	s.err = nil
	return nil
}

func (s *Store) fail(op string, err error) error {
	perr := &domain.PersistenceError{Op: op, Key: snapshot.TasksKey(s.userID), Err: err}
	s.err = perr
	s.logger.Warn("snapshot operation failed", "op", op, "user_id", s.userID, "error", err)
	if s.onFailure != nil {
		s.onFailure(s.userID, perr)
	}
	return perr
}

// IsLoadFailure reports whether err is a failed snapshot read.
func IsLoadFailure(err error) bool {
	var perr *domain.PersistenceError
	return errors.As(err, &perr) && perr.Op == OpLoad
}
