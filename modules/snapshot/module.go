package snapshot

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/storage/redis/v3"
)

// Config selects and configures the storage backend.
type Config struct {
	Backend       string
	SQLitePath    string
	SQLiteDebug   bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PostgresURL   string
	NATSURL       string
	Bucket        string
	// Latency is added before every storage call. Zero disables it.
	Latency time.Duration
}

// DefaultConfig returns a SQLite configuration with no added latency.
func DefaultConfig() Config {
	return Config{
		Backend:    BackendSQLite,
		SQLitePath: "reminder.db",
		RedisAddr:  "127.0.0.1:6379",
		NATSURL:    "nats://localhost:4222",
		Bucket:     "reminder-snapshots",
	}
}

// pinger is implemented by backends that can report connectivity.
type pinger interface {
	Ping(ctx context.Context) error
}

// PluginModule provides the snapshot repository as a mono plugin.
// Plugins start first and stop last, so the repository outlives the task module.
type PluginModule struct {
	container types.ServiceContainer
	config    Config
	storage   Storage
	repo      Repository
}

// Compile-time interface checks.
var (
	_ mono.PluginModule          = (*PluginModule)(nil)
	_ mono.HealthCheckableModule = (*PluginModule)(nil)
)

// NewPluginModule creates a snapshot plugin for the given configuration.
func NewPluginModule(config Config) *PluginModule {
	return &PluginModule{config: config}
}

// Name returns the module name.
func (m *PluginModule) Name() string {
	return "snapshot"
}

// Start opens the configured backend.
func (m *PluginModule) Start(ctx context.Context) error {
	s, err := Open(ctx, m.config)
	if err != nil {
		return err
	}
	m.storage = WithLatency(s, m.config.Latency)
	m.repo = NewRepository(m.storage)

	log.Printf("[snapshot] Using %s backend (latency: %s)", m.config.Backend, m.config.Latency)
	log.Println("[snapshot] Plugin started")
	return nil
}

// Stop closes the backend connection.
func (m *PluginModule) Stop(_ context.Context) error {
	if m.storage != nil {
		if err := m.storage.Close(); err != nil {
			log.Printf("[snapshot] Error closing storage: %v", err)
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	log.Println("[snapshot] Plugin stopped")
	return nil
}

// SetContainer sets the service container for this plugin.
func (m *PluginModule) SetContainer(container types.ServiceContainer) {
	m.container = container
}

// Container returns the service container for this plugin.
func (m *PluginModule) Container() types.ServiceContainer {
	return m.container
}

// Port returns the repository consumers persist through. It is nil until Start.
func (m *PluginModule) Port() Repository {
	return m.repo
}

// Health probes the backend with a read of a key that never exists.
func (m *PluginModule) Health(ctx context.Context) mono.HealthStatus {
	if m.storage == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "storage not initialized",
		}
	}

	var err error
	if p, ok := m.storage.(pinger); ok {
		err = p.Ping(ctx)
	} else {
		_, err = m.storage.GetWithContext(ctx, "__health_check__")
	}
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("health check failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"backend": m.config.Backend,
			"latency": m.config.Latency.String(),
		},
	}
}

// Open creates the storage named by config.Backend.
func Open(ctx context.Context, config Config) (Storage, error) {
	switch config.Backend {
	case BackendSQLite, "":
		return OpenSQLite(config.SQLitePath, config.SQLiteDebug)
	case BackendRedis:
		return openRedis(config)
	case BackendPostgres:
		return OpenPostgres(ctx, config.PostgresURL)
	case BackendJetStream:
		return OpenJetStream(ctx, config.NATSURL, config.Bucket)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.Backend)
	}
}

// openRedis dials first because redis.New panics when the server is unreachable.
func openRedis(config Config) (Storage, error) {
	conn, err := net.DialTimeout("tcp", config.RedisAddr, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("redis not available at %s: %w", config.RedisAddr, err)
	}
	conn.Close()

	host, port := parseRedisAddr(config.RedisAddr)
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: config.RedisPassword,
		Database: config.RedisDB,
		PoolSize: 10,
	}), nil
}

// parseRedisAddr parses "host:port" into host and port.
// Returns defaults (127.0.0.1:6379) for invalid or missing values.
func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	if host == "" {
		host = defaultHost
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}
	return host, port
}
