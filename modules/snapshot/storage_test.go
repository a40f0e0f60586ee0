package snapshot

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/gofiber/storage/redis/v3"
)

const testRedisAddr = "localhost:6379"

// checkRedisAvailable checks if Redis is reachable before creating storage.
// gofiber/storage/redis panics on connection failure, so we check first.
func checkRedisAvailable(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", testRedisAddr, 2*time.Second)
	if err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	conn.Close()
}

// exerciseStorage runs the behaviour every backend must share.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()
	key := "test-" + time.Now().Format("150405.000000000")

	got, err := s.GetWithContext(ctx, key)
	if err != nil || len(got) != 0 {
		t.Fatalf("GetWithContext() on missing key = %q, %v; want empty, nil", got, err)
	}

	if err := s.SetWithContext(ctx, key, []byte("one"), 0); err != nil {
		t.Fatalf("SetWithContext() error = %v", err)
	}
	if err := s.SetWithContext(ctx, key, []byte("two"), 0); err != nil {
		t.Fatalf("SetWithContext() overwrite error = %v", err)
	}
	got, err = s.GetWithContext(ctx, key)
	if err != nil || string(got) != "two" {
		t.Fatalf("GetWithContext() = %q, %v; want %q", got, err, "two")
	}

	if err := s.DeleteWithContext(ctx, key); err != nil {
		t.Fatalf("DeleteWithContext() error = %v", err)
	}
	if err := s.DeleteWithContext(ctx, key); err != nil {
		t.Fatalf("DeleteWithContext() on missing key error = %v", err)
	}
	got, err = s.GetWithContext(ctx, key)
	if err != nil || len(got) != 0 {
		t.Fatalf("GetWithContext() after delete = %q, %v", got, err)
	}
}

func TestSQLiteStorage(t *testing.T) {
	exerciseStorage(t, setupTestStorage(t))
}

func TestRedisStorage(t *testing.T) {
	checkRedisAvailable(t)

	s := redis.New(redis.Config{
		Host: "localhost",
		Port: 6379,
	})
	defer s.Close()

	exerciseStorage(t, s)
}

func TestPostgresStorage(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := OpenPostgres(ctx, url)
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	defer s.Close()

	exerciseStorage(t, s)
}

func TestJetStreamStorage(t *testing.T) {
	conn, err := net.DialTimeout("tcp", "localhost:4222", 2*time.Second)
	if err != nil {
		t.Skipf("NATS not available: %v", err)
	}
	conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := OpenJetStream(ctx, "nats://localhost:4222", "reminder-snapshots-test")
	if err != nil {
		t.Skipf("JetStream not available: %v", err)
	}
	defer s.Close()

	exerciseStorage(t, s)
}

func TestWithLatency(t *testing.T) {
	base := setupTestStorage(t)

	if WithLatency(base, 0) != Storage(base) {
		t.Error("WithLatency(0) should return the storage unchanged")
	}

	slow := WithLatency(base, 30*time.Millisecond)
	start := time.Now()
	if err := slow.SetWithContext(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("SetWithContext() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("SetWithContext() returned after %s, want at least 30ms", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := slow.GetWithContext(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("GetWithContext() error = %v, want context.Canceled", err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), Config{Backend: "floppy"}); err == nil {
		t.Error("Open() error = nil for unknown backend")
	}
}

func TestParseRedisAddr(t *testing.T) {
	tests := []struct {
		addr     string
		wantHost string
		wantPort int
	}{
		{"localhost:6380", "localhost", 6380},
		{":6379", "127.0.0.1", 6379},
		{"redis", "127.0.0.1", 6379},
		{"cache:abc", "cache", 6379},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			host, port := parseRedisAddr(tt.addr)
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("parseRedisAddr(%q) = %s, %d; want %s, %d", tt.addr, host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestPluginModule_Lifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.SQLitePath = t.TempDir() + "/plugin.db"

	m := NewPluginModule(cfg)
	if m.Health(ctx).Healthy {
		t.Error("Health() healthy before Start")
	}
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if m.Port() == nil {
		t.Fatal("Port() = nil after Start")
	}
	if h := m.Health(ctx); !h.Healthy {
		t.Errorf("Health() = %+v, want healthy", h)
	}
	if err := m.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
