package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// ErrNoSnapshot indicates the store holds no snapshot.
var ErrNoSnapshot = errors.New("no snapshot")

// SnapshotStore persists the serialized cache blob between process runs.
// Implementations must treat the blob as opaque.
type SnapshotStore interface {
	// Load returns the stored snapshot blob, or ErrNoSnapshot.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored snapshot blob.
	Save(ctx context.Context, data []byte) error

	// Delete removes the stored snapshot. Deleting an absent snapshot
	// is not an error.
	Delete(ctx context.Context) error
}

// FileStore persists the snapshot as a single JSON file on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed snapshot store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements SnapshotStore.
func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Save implements SnapshotStore. The blob is written to a temp file and
// renamed so a crash mid-write never leaves a truncated snapshot behind.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Delete implements SnapshotStore.
func (s *FileStore) Delete(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// redisSnapshotKey is the key the whole cache blob is stored under.
const redisSnapshotKey = "storefront:productCache"

// RedisStore persists the snapshot in Redis, for deployments where the
// proxy runs on more than one host.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a Redis-backed snapshot store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{redis: redisClient}
}

// Load implements SnapshotStore.
func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.redis.Get(ctx, redisSnapshotKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Save implements SnapshotStore. No Redis-side TTL is set: the snapshot
// age check at load time owns the 30-minute horizon.
func (s *RedisStore) Save(ctx context.Context, data []byte) error {
	if err := s.redis.Set(ctx, redisSnapshotKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete implements SnapshotStore.
func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.redis.Del(ctx, redisSnapshotKey).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// NopStore discards snapshots; the cache runs in-memory only.
type NopStore struct{}

// Load implements SnapshotStore.
func (NopStore) Load(ctx context.Context) ([]byte, error) { return nil, ErrNoSnapshot }

// Save implements SnapshotStore.
func (NopStore) Save(ctx context.Context, data []byte) error { return nil }

// Delete implements SnapshotStore.
func (NopStore) Delete(ctx context.Context) error { return nil }
