package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// JetStreamStorage implements Storage on a NATS JetStream key-value bucket.
type JetStreamStorage struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	bucket jetstream.KeyValue
}

// OpenJetStream connects to natsURL and opens (or creates) the named bucket.
func OpenJetStream(ctx context.Context, natsURL, bucket string) (*JetStreamStorage, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	s := &JetStreamStorage{conn: conn, js: js}
	if s.bucket, err = s.getOrCreateBucket(ctx, bucket); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open %s bucket: %w", bucket, err)
	}
	return s, nil
}

func (s *JetStreamStorage) getOrCreateBucket(ctx context.Context, name string) (jetstream.KeyValue, error) {
	bucket, err := s.js.KeyValue(ctx, name)
	if err == nil {
		return bucket, nil
	}

	return s.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Task collection and session snapshots",
	})
}

func (s *JetStreamStorage) GetWithContext(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.bucket.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return entry.Value(), nil
}

func (s *JetStreamStorage) SetWithContext(ctx context.Context, key string, val []byte, _ time.Duration) error {
	if _, err := s.bucket.Put(ctx, key, val); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *JetStreamStorage) DeleteWithContext(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// IsConnected returns whether the NATS connection is active.
func (s *JetStreamStorage) IsConnected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

// Close closes the NATS connection.
func (s *JetStreamStorage) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}
