package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/Sid-047/reminderApp/domain/user"
)

// mockRepository implements snapshot.Repository in memory.
type mockRepository struct {
	mu      sync.Mutex
	tasks   map[string][]domain.Task
	saves   int
	loadErr error
	saveErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{tasks: make(map[string][]domain.Task)}
}

func (m *mockRepository) LoadTasks(_ context.Context, userID string) ([]domain.Task, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	tasks, ok := m.tasks[userID]
	if !ok {
		return nil, false, nil
	}
	return append([]domain.Task(nil), tasks...), true, nil
}

func (m *mockRepository) SaveTasks(_ context.Context, userID string, tasks []domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.tasks[userID] = append([]domain.Task(nil), tasks...)
	return nil
}

func (m *mockRepository) LoadUser(context.Context) (*user.User, error) { return nil, nil }
func (m *mockRepository) SaveUser(context.Context, user.User) error  { return nil }
func (m *mockRepository) DeleteUser(context.Context) error           { return nil }

func (m *mockRepository) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *mockRepository) setSaveErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// setupTestStore creates a store loaded for user u1 with an empty collection.
func setupTestStore(t *testing.T, repo *mockRepository) *Store {
	t.Helper()
	s := NewStore(repo,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
		WithSeeder(NoSeed),
	)
	if _, err := s.Load(context.Background(), "u1"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s
}

func validInput(title string) domain.Input {
	return domain.Input{Title: title, Deadline: fixedNow.Add(48 * time.Hour), Priority: domain.PriorityMedium}
}

func TestStore_LoadSeedsNewUser(t *testing.T) {
	repo := newMockRepository()
	s := NewStore(repo,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
	)

	tasks, err := s.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(tasks) != 5 {
		t.Fatalf("Load() returned %d tasks, want 5 seeded", len(tasks))
	}
	if repo.saveCount() != 1 {
		t.Errorf("seed persisted %d times, want 1", repo.saveCount())
	}

	completed := 0
	for _, task := range tasks {
		if task.UserID != "u1" {
			t.Errorf("seeded task owned by %q", task.UserID)
		}
		if task.Completed {
			completed++
			if !task.Deadline.Before(fixedNow) {
				t.Error("completed seed task should be past due")
			}
		}
	}
	if completed != 1 {
		t.Errorf("seed has %d completed tasks, want 1", completed)
	}

	again := NewStore(repo, WithIDGenerator(sequentialIDs()))
	reloaded, err := again.Load(context.Background(), "u1")
	if err != nil || len(reloaded) != 5 || reloaded[0].ID != tasks[0].ID {
		t.Errorf("second Load() = %d tasks, %v; want the persisted seed", len(reloaded), err)
	}
}

func TestStore_LoadFailureFallsBackToEmpty(t *testing.T) {
	repo := newMockRepository()
	repo.loadErr = errors.New("corrupt snapshot")

	var hooked *domain.PersistenceError
	s := NewStore(repo, WithFailureHook(func(_ string, err *domain.PersistenceError) { hooked = err }))

	tasks, err := s.Load(context.Background(), "u1")
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("Load() error = %v, want ErrPersistence", err)
	}
	if !IsLoadFailure(err) {
		t.Error("IsLoadFailure() = false")
	}
	if len(tasks) != 0 || len(s.Tasks()) != 0 {
		t.Error("store should hold an empty collection after a failed load")
	}
	if s.Err() == nil || hooked == nil || hooked.Op != OpLoad {
		t.Errorf("failure not recorded: Err() = %v, hook = %v", s.Err(), hooked)
	}
}

func TestStore_AddThenReload(t *testing.T) {
	repo := newMockRepository()
	s := setupTestStore(t, repo)
	ctx := context.Background()

	in := validInput("Write tests")
	in.Description = "cover the store"
	added, err := s.Add(ctx, in)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if added.ID == "" || added.UserID != "u1" || !added.CreatedAt.Equal(fixedNow) || added.Completed {
		t.Errorf("Add() = %+v, system fields not assigned", added)
	}

	fresh := NewStore(repo)
	tasks, err := fresh.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Load() = %d tasks, want 1", len(tasks))
	}
	got := tasks[0]
	if got.ID != added.ID || got.Title != "Write tests" || got.Description != "cover the store" ||
		got.Priority != domain.PriorityMedium || !got.Deadline.Equal(in.Deadline) {
		t.Errorf("reloaded task = %+v, want %+v", got, added)
	}
}

func TestStore_AddValidation(t *testing.T) {
	repo := newMockRepository()
	s := setupTestStore(t, repo)
	saves := repo.saveCount()

	_, err := s.Add(context.Background(), domain.Input{Title: "  ", Deadline: fixedNow})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Add() error = %v, want ErrValidation", err)
	}
	if len(s.Tasks()) != 0 || repo.saveCount() != saves {
		t.Error("rejected Add() mutated or persisted the collection")
	}
}

func TestStore_AddWithoutUser(t *testing.T) {
	s := NewStore(newMockRepository())
	_, err := s.Add(context.Background(), validInput("orphan"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Add() error = %v, want ErrValidation", err)
	}
}

func TestStore_AddUniqueIDs(t *testing.T) {
	repo := newMockRepository()
	s := NewStore(repo,
		WithIDGenerator(func() func() string {
			ids := []string{"dup", "dup", "dup", "other"}
			i := 0
			return func() string { id := ids[i]; i++; return id }
		}()),
		WithSeeder(NoSeed),
	)
	ctx := context.Background()
	if _, err := s.Load(ctx, "u1"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	first, _ := s.Add(ctx, validInput("a"))
	second, _ := s.Add(ctx, validInput("b"))
	if first.ID == second.ID {
		t.Errorf("Add() reused id %q", first.ID)
	}
}

func TestStore_Update(t *testing.T) {
	s := setupTestStore(t, newMockRepository())
	ctx := context.Background()

	a, _ := s.Add(ctx, validInput("a"))
	b, _ := s.Add(ctx, validInput("b"))
	c, _ := s.Add(ctx, validInput("c"))

	title := "b2"
	high := domain.PriorityHigh
	updated, err := s.Update(ctx, b.ID, domain.Patch{Title: &title, Priority: &high})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "b2" || updated.Priority != domain.PriorityHigh || updated.ID != b.ID ||
		!updated.CreatedAt.Equal(b.CreatedAt) || updated.UserID != b.UserID {
		t.Errorf("Update() = %+v", updated)
	}

	tasks := s.Tasks()
	if tasks[0].ID != a.ID || tasks[1].ID != b.ID || tasks[2].ID != c.ID {
		t.Error("Update() changed collection order")
	}
}

func TestStore_UpdateEmptyPatchIsNoOp(t *testing.T) {
	s := setupTestStore(t, newMockRepository())
	ctx := context.Background()
	before, _ := s.Add(ctx, validInput("same"))

	after, err := s.Update(ctx, before.ID, domain.Patch{})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if after != before {
		t.Errorf("empty patch changed task: %+v -> %+v", before, after)
	}
}

func TestStore_UpdateMissing(t *testing.T) {
	s := setupTestStore(t, newMockRepository())
	title := "x"

	_, err := s.Update(context.Background(), "missing", domain.Patch{Title: &title})
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "missing" {
		t.Errorf("Update() error = %v, want NotFoundError", err)
	}
}

func TestStore_UpdateRejectsBlankTitle(t *testing.T) {
	s := setupTestStore(t, newMockRepository())
	ctx := context.Background()
	task, _ := s.Add(ctx, validInput("keep"))

	blank := ""
	if _, err := s.Update(ctx, task.ID, domain.Patch{Title: &blank}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Update() error = %v, want ErrValidation", err)
	}
	got, _ := s.Get(task.ID)
	if got.Title != "keep" {
		t.Errorf("title = %q after rejected update", got.Title)
	}
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	s := setupTestStore(t, repo)
	ctx := context.Background()
	task, _ := s.Add(ctx, validInput("gone"))

	deleted, err := s.Delete(ctx, task.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete() = %v, %v; want true, nil", deleted, err)
	}
	saves := repo.saveCount()

	deleted, err = s.Delete(ctx, task.ID)
	if err != nil || deleted {
		t.Fatalf("second Delete() = %v, %v; want false, nil", deleted, err)
	}
	if repo.saveCount() != saves {
		t.Error("deleting an absent id wrote a snapshot")
	}
	if len(s.Tasks()) != 0 {
		t.Error("collection not empty after delete")
	}
}

func TestStore_CompleteIsIdempotent(t *testing.T) {
	s := setupTestStore(t, newMockRepository())
	ctx := context.Background()
	task, _ := s.Add(ctx, validInput("finish"))

	first, err := s.Complete(ctx, task.ID)
	if err != nil || !first.Completed {
		t.Fatalf("Complete() = %+v, %v", first, err)
	}
	second, err := s.Complete(ctx, task.ID)
	if err != nil || second != first {
		t.Errorf("second Complete() = %+v, %v; want %+v", second, err, first)
	}

	if _, err := s.Complete(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Complete() on missing id error = %v, want ErrNotFound", err)
	}
}

func TestStore_PersistenceFailureKeepsMutation(t *testing.T) {
	repo := newMockRepository()
	var hooks int
	s := NewStore(repo,
		WithSeeder(NoSeed),
		WithFailureHook(func(string, *domain.PersistenceError) { hooks++ }),
	)
	ctx := context.Background()
	if _, err := s.Load(ctx, "u1"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	repo.setSaveErr(errors.New("quota exceeded"))
	task, err := s.Add(ctx, validInput("kept"))
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("Add() error = %v, want ErrPersistence", err)
	}
	if task.ID == "" || len(s.Tasks()) != 1 {
		t.Error("Add() rolled back after a failed write")
	}
	if s.Err() == nil || hooks != 1 {
		t.Errorf("Err() = %v, hooks = %d", s.Err(), hooks)
	}

	repo.setSaveErr(nil)
	if _, err := s.Complete(ctx, task.ID); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v after a successful write", s.Err())
	}
}

func TestStore_SwitchUser(t *testing.T) {
	repo := newMockRepository()
	s := setupTestStore(t, repo)
	ctx := context.Background()
	if _, err := s.Add(ctx, validInput("u1 task")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	tasks, err := s.Load(ctx, "u2")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(tasks) != 0 || s.UserID() != "u2" {
		t.Errorf("after switching user: %d tasks, user %q", len(tasks), s.UserID())
	}

	added, _ := s.Add(ctx, validInput("u2 task"))
	if added.UserID != "u2" {
		t.Errorf("task owned by %q, want u2", added.UserID)
	}
	if len(repo.tasks["u1"]) != 1 {
		t.Error("u1 collection changed after switching user")
	}
}

func TestStore_LoadDropsForeignTasks(t *testing.T) {
	repo := newMockRepository()
	repo.tasks["u1"] = []domain.Task{
		{ID: "mine", UserID: "u1", Title: "Mine", Deadline: fixedNow, Priority: domain.PriorityLow},
		{ID: "theirs", UserID: "u2", Title: "Theirs", Deadline: fixedNow, Priority: domain.PriorityHigh},
		{ID: "unowned", Title: "Unowned", Deadline: fixedNow, Priority: domain.PriorityMedium},
	}

	s := NewStore(repo, WithSeeder(NoSeed))
	tasks, err := s.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "mine" {
		t.Fatalf("Load() = %+v, want only the u1 task", tasks)
	}
	if _, err := s.Get("theirs"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get(theirs) error = %v, want ErrNotFound", err)
	}
}

func TestStore_CancelledContext(t *testing.T) {
	repo := newMockRepository()
	s := setupTestStore(t, repo)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Add(ctx, validInput("late")); !errors.Is(err, context.Canceled) {
		t.Errorf("Add() error = %v, want context.Canceled", err)
	}
	if len(s.Tasks()) != 0 {
		t.Error("cancelled Add() mutated the collection")
	}
}

func TestStore_ConcurrentAdds(t *testing.T) {
	repo := newMockRepository()
	s := setupTestStore(t, repo)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Add(ctx, validInput(fmt.Sprintf("task %d", i))); err != nil {
				t.Errorf("Add() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	tasks := s.Tasks()
	if len(tasks) != 50 {
		t.Fatalf("collection has %d tasks, want 50", len(tasks))
	}
	seen := make(map[string]bool)
	for _, task := range tasks {
		if seen[task.ID] {
			t.Errorf("duplicate id %s", task.ID)
		}
		seen[task.ID] = true
	}
	if len(repo.tasks["u1"]) != 50 {
		t.Errorf("last snapshot has %d tasks, want 50", len(repo.tasks["u1"]))
	}
	if s.Version() < 50 {
		t.Errorf("Version() = %d, want at least 50", s.Version())
	}
}
