// Package snapshot persists whole task collections and the session user in a
// string-keyed byte store. Several backends are available behind one port.
package snapshot

import (
	"context"
	"time"
)

// Storage is the byte-level key-value port used by the snapshot repository.
// The method set matches github.com/gofiber/storage drivers, so a Redis
// storage plugs in directly. GetWithContext returns nil, nil for a missing key.
type Storage interface {
	GetWithContext(ctx context.Context, key string) ([]byte, error)
	SetWithContext(ctx context.Context, key string, val []byte, exp time.Duration) error
	DeleteWithContext(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Config.Backend.
const (
	BackendSQLite    = "sqlite"
	BackendRedis     = "redis"
	BackendPostgres  = "postgres"
	BackendJetStream = "jetstream"
)

// latencyStorage delays every call by a fixed duration before touching the
// wrapped storage. It reproduces the round trip of a remote store in demos.
type latencyStorage struct {
	Storage
	delay time.Duration
}

// WithLatency wraps s so that each read, write and delete waits for d first.
// A non-positive d returns s unchanged.
func WithLatency(s Storage, d time.Duration) Storage {
	if d <= 0 {
		return s
	}
	return &latencyStorage{Storage: s, delay: d}
}

func (l *latencyStorage) wait(ctx context.Context) error {
	timer := time.NewTimer(l.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (l *latencyStorage) GetWithContext(ctx context.Context, key string) ([]byte, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.Storage.GetWithContext(ctx, key)
}

func (l *latencyStorage) SetWithContext(ctx context.Context, key string, val []byte, exp time.Duration) error {
	if err := l.wait(ctx); err != nil {
		return err
	}
	return l.Storage.SetWithContext(ctx, key, val, exp)
}

func (l *latencyStorage) DeleteWithContext(ctx context.Context, key string) error {
	if err := l.wait(ctx); err != nil {
		return err
	}
	return l.Storage.DeleteWithContext(ctx, key)
}
