package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestModule creates a started task module over an in-memory repository.
func createTestModule(t *testing.T, repo *mockRepository, opts ...Option) *TaskModule {
	t.Helper()

	opts = append([]Option{WithIDGenerator(sequentialIDs())}, opts...)
	m := NewModuleWithRepository(repo, opts...)
	m.now = func() time.Time { return fixedNow }
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Stop(context.Background()) })
	return m
}

func TestTaskModule_StartRequiresPlugin(t *testing.T) {
	m := NewModule()
	err := m.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, m.Health(context.Background()).Healthy)
}

func TestTaskModule_AddAndList(t *testing.T) {
	ctx := context.Background()
	m := createTestModule(t, newMockRepository(), WithSeeder(NoSeed))

	resp, err := m.addTask(ctx, AddTaskRequest{
		UserID: "u1",
		Task: domain.Input{
			Title:    "Ship release",
			Deadline: fixedNow.Add(2 * time.Hour),
			Priority: domain.PriorityHigh,
		},
	}, nil)
	require.NoError(t, err)
	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Task)
	assert.Equal(t, "u1", resp.Task.UserID)
	assert.True(t, resp.Task.CreatedAt.Equal(fixedNow))

	list, err := m.listTasks(ctx, ListTasksRequest{UserID: "u1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, resp.Task.ID, list.Tasks[0].ID)

	other, err := m.listTasks(ctx, ListTasksRequest{UserID: "u2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, other.Total, "tasks must not leak between users")
}

func TestTaskModule_AddValidationError(t *testing.T) {
	m := createTestModule(t, newMockRepository(), WithSeeder(NoSeed))

	resp, err := m.addTask(context.Background(), AddTaskRequest{UserID: "u1", Task: domain.Input{Title: ""}}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Nil(t, resp.Task)
	assert.True(t, errors.Is(resp.Error.Err(), domain.ErrValidation))
}

func TestTaskModule_MissingUser(t *testing.T) {
	m := createTestModule(t, newMockRepository())

	resp, err := m.summary(context.Background(), SummaryRequest{}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation_error", resp.Error.Kind)
}

func TestTaskModule_UpdateCompleteDelete(t *testing.T) {
	ctx := context.Background()
	m := createTestModule(t, newMockRepository(), WithSeeder(NoSeed))

	added, err := m.addTask(ctx, AddTaskRequest{UserID: "u1", Task: domain.Input{Title: "a", Deadline: fixedNow}}, nil)
	require.NoError(t, err)
	id := added.Task.ID

	title := "renamed"
	updated, err := m.updateTask(ctx, UpdateTaskRequest{UserID: "u1", TaskID: id, Patch: domain.Patch{Title: &title}}, nil)
	require.NoError(t, err)
	require.Nil(t, updated.Error)
	assert.Equal(t, "renamed", updated.Task.Title)

	missing, err := m.updateTask(ctx, UpdateTaskRequest{UserID: "u1", TaskID: "nope", Patch: domain.Patch{Title: &title}}, nil)
	require.NoError(t, err)
	require.NotNil(t, missing.Error)
	assert.True(t, errors.Is(missing.Error.Err(), domain.ErrNotFound))

	completed, err := m.completeTask(ctx, CompleteTaskRequest{UserID: "u1", TaskID: id}, nil)
	require.NoError(t, err)
	assert.True(t, completed.Task.Completed)

	got, err := m.getTask(ctx, GetTaskRequest{UserID: "u1", TaskID: id}, nil)
	require.NoError(t, err)
	assert.True(t, got.Task.Completed)

	deleted, err := m.deleteTask(ctx, DeleteTaskRequest{UserID: "u1", TaskID: id}, nil)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)

	again, err := m.deleteTask(ctx, DeleteTaskRequest{UserID: "u1", TaskID: id}, nil)
	require.NoError(t, err)
	assert.False(t, again.Deleted)
	assert.Nil(t, again.Error)
}

func TestTaskModule_PersistenceErrorStillApplies(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	m := createTestModule(t, repo, WithSeeder(NoSeed))

	_, err := m.loadTasks(ctx, LoadTasksRequest{UserID: "u1"}, nil)
	require.NoError(t, err)

	repo.setSaveErr(errors.New("disk full"))
	resp, err := m.addTask(ctx, AddTaskRequest{UserID: "u1", Task: domain.Input{Title: "a", Deadline: fixedNow}}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Task, "mutation must be applied")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "persistence_error", resp.Error.Kind)

	status, err := m.status(ctx, StatusRequest{UserID: "u1"}, nil)
	require.NoError(t, err)
	assert.True(t, status.Loaded)
	assert.Contains(t, status.LastError, "disk full")
}

func TestTaskModule_LoadFailureIsNotCached(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	repo.loadErr = errors.New("unreadable")
	m := createTestModule(t, repo)

	resp, err := m.loadTasks(ctx, LoadTasksRequest{UserID: "u1"}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "persistence_error", resp.Error.Kind)
	assert.Empty(t, resp.Tasks)
	assert.False(t, m.Registry().Loaded("u1"))

	repo.mu.Lock()
	repo.loadErr = nil
	repo.mu.Unlock()

	resp, err = m.loadTasks(ctx, LoadTasksRequest{UserID: "u1"}, nil)
	require.NoError(t, err)
	assert.Nil(t, resp.Error)
	assert.Len(t, resp.Tasks, 5)
}

func TestTaskModule_Dashboard(t *testing.T) {
	ctx := context.Background()
	m := createTestModule(t, newMockRepository())

	resp, err := m.dashboard(ctx, DashboardRequest{UserID: "u1"}, nil)
	require.NoError(t, err)
	require.Nil(t, resp.Error)

	// Seed: deadlines +2, +1, -1 (completed), +3, +5 days.
	assert.Len(t, resp.Buckets.Upcoming, 4)
	assert.Len(t, resp.Buckets.Completed, 1)
	assert.Empty(t, resp.Buckets.Overdue)
	assert.Empty(t, resp.Buckets.Today)
	assert.Equal(t, 5, resp.Summary.Total)
	assert.Equal(t, 20, resp.Summary.CompletionRate)

	sorted, err := m.dashboard(ctx, DashboardRequest{
		UserID:    "u1",
		Criteria:  domain.Criteria{Status: domain.StatusPending},
		SortBy:    domain.SortByPriority,
		Direction: domain.Descending,
	}, nil)
	require.NoError(t, err)
	require.Len(t, sorted.Buckets.Upcoming, 4)
	assert.Equal(t, domain.PriorityHigh, sorted.Buckets.Upcoming[0].Priority)
	assert.Equal(t, domain.PriorityMedium, sorted.Buckets.Upcoming[3].Priority)
	assert.Empty(t, sorted.Buckets.Completed)
	assert.Equal(t, 5, sorted.Summary.Total, "summary covers the whole collection")
}

func TestTaskModule_InvalidView(t *testing.T) {
	m := createTestModule(t, newMockRepository())

	tests := []struct {
		name string
		req  ListTasksRequest
	}{
		{"bad priority", ListTasksRequest{UserID: "u1", Criteria: domain.Criteria{Priority: "urgent"}}},
		{"bad status", ListTasksRequest{UserID: "u1", Criteria: domain.Criteria{Status: "archived"}}},
		{"bad date", ListTasksRequest{UserID: "u1", Criteria: domain.Criteria{Date: "someday"}}},
		{"bad sort", ListTasksRequest{UserID: "u1", SortBy: "color"}},
		{"bad direction", ListTasksRequest{UserID: "u1", Direction: "sideways"}},
		{"bad timezone", ListTasksRequest{UserID: "u1", Timezone: "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := m.listTasks(context.Background(), tt.req, nil)
			require.NoError(t, err)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "validation_error", resp.Error.Kind)
		})
	}
}

func TestTaskModule_NeutralFilterValues(t *testing.T) {
	m := createTestModule(t, newMockRepository())

	resp, err := m.listTasks(context.Background(), ListTasksRequest{
		UserID:   "u1",
		Criteria: domain.Criteria{Priority: domain.AnyPriority, Status: domain.StatusAll, Date: domain.DateAll},
	}, nil)
	require.NoError(t, err)
	require.Nil(t, resp.Error)
	assert.Equal(t, 5, resp.Total)
}

func TestTaskModule_CalendarAndMonth(t *testing.T) {
	ctx := context.Background()
	m := createTestModule(t, newMockRepository())

	// The completed seed task is due yesterday.
	day, err := m.calendar(ctx, CalendarRequest{UserID: "u1", Date: "2024-03-14"}, nil)
	require.NoError(t, err)
	require.Nil(t, day.Error)
	assert.Equal(t, "2024-03-14", day.Date)
	assert.Empty(t, day.Pending)
	assert.Len(t, day.Completed, 1)

	today, err := m.calendar(ctx, CalendarRequest{UserID: "u1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", today.Date)

	bad, err := m.calendar(ctx, CalendarRequest{UserID: "u1", Date: "14/03/2024"}, nil)
	require.NoError(t, err)
	require.NotNil(t, bad.Error)

	month, err := m.month(ctx, MonthRequest{UserID: "u1", Month: "2024-03"}, nil)
	require.NoError(t, err)
	require.Nil(t, month.Error)
	assert.Equal(t, "2024-03", month.Month)
	assert.Len(t, month.Markers, 5)
	assert.Equal(t, 5, month.Stats.Total)
	assert.Equal(t, 1, month.Stats.Completed)
	assert.Equal(t, 2, month.Stats.HighPriorityPending)
}

func TestRegistry_ConcurrentFirstLoad(t *testing.T) {
	repo := &countingRepository{mockRepository: newMockRepository()}
	r := NewRegistry(repo, WithSeeder(NoSeed))

	var wg sync.WaitGroup
	stores := make([]*Store, 20)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := r.Store(context.Background(), "u1")
			assert.NoError(t, err)
			stores[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range stores {
		assert.Same(t, stores[0], s)
	}
	assert.Equal(t, int32(1), repo.loads.Load())
	assert.Equal(t, 1, r.Len())

	r.Evict("u1")
	assert.False(t, r.Loaded("u1"))
}

// countingRepository counts snapshot reads.
type countingRepository struct {
	*mockRepository
	loads atomic.Int32
}

func (c *countingRepository) LoadTasks(ctx context.Context, userID string) ([]domain.Task, bool, error) {
	c.loads.Add(1)
	time.Sleep(10 * time.Millisecond)
	return c.mockRepository.LoadTasks(ctx, userID)
}
