package task

import (
	"context"
	"net"
	"testing"
	"time"

	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/go-monolith/mono"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clientModule depends on the task module and keeps the container the
// framework hands it, the same way the api module does.
type clientModule struct {
	name      string
	target    string
	container mono.ServiceContainer
}

func (c *clientModule) Name() string                  { return c.name }
func (c *clientModule) Start(_ context.Context) error { return nil }
func (c *clientModule) Stop(_ context.Context) error  { return nil }
func (c *clientModule) Dependencies() []string        { return []string{c.target} }

func (c *clientModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == c.target {
		c.container = container
	}
}

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// createTestAdapter starts a mono application with the task module and
// returns a TaskPort that reaches it over the service container.
func createTestAdapter(t *testing.T, repo *mockRepository) TaskPort {
	t.Helper()

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError), // Suppress logs in tests
		mono.WithNATSPort(freePort(t)),
		mono.WithJetStreamStorageDir(t.TempDir()),
	)
	require.NoError(t, err)

	m := NewModuleWithRepository(repo, WithSeeder(NoSeed), WithIDGenerator(sequentialIDs()))
	m.now = func() time.Time { return fixedNow }
	client := &clientModule{name: "task-client", target: "task"}

	app.Register(m)
	app.Register(client)

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	require.NotNil(t, client.container, "task container not injected")
	return NewTaskAdapter(client.container)
}

func TestTaskAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	port := createTestAdapter(t, repo)

	tasks, err := port.LoadTasks(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// No priority on the wire: the server applies the default.
	added, err := port.AddTask(ctx, "u1", domain.Input{
		Title:    "Water the plants",
		Deadline: fixedNow.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, added)
	assert.Equal(t, domain.PriorityMedium, added.Priority)
	assert.Equal(t, "u1", added.UserID)

	title := "Water all the plants"
	high := domain.PriorityHigh
	updated, err := port.UpdateTask(ctx, "u1", added.ID, domain.Patch{Title: &title, Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)

	list, err := port.ListTasks(ctx, &ListTasksRequest{
		UserID:   "u1",
		Criteria: domain.Criteria{Priority: domain.AnyPriority, Status: domain.StatusAll, Date: domain.DateAll},
	})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, added.ID, list.Tasks[0].ID)

	deleted, err := port.DeleteTask(ctx, "u1", added.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = port.DeleteTask(ctx, "u1", added.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Empty(t, repo.tasks["u1"])
}

func TestTaskAdapter_TypedErrors(t *testing.T) {
	ctx := context.Background()
	port := createTestAdapter(t, newMockRepository())

	_, err := port.AddTask(ctx, "u1", domain.Input{Title: "  ", Deadline: fixedNow})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = port.GetTask(ctx, "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = port.ListTasks(ctx, &ListTasksRequest{UserID: "u1", Criteria: domain.Criteria{Priority: "urgent"}})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
