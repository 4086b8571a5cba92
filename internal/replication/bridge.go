package replication

import (
	"context"
	"sync"

	"studyforest/internal/storage"
)

// Bridge mirrors documents between processes sharing a namespace. Writes are
// last-write-wins; nothing here is authoritative.
type Bridge interface {
	Push(ctx context.Context, namespace, key string, value []byte) error
	PullOnce(ctx context.Context, namespace, key string) ([]byte, bool, error)
}

// ReplicatedKeys are the documents shared within a space.
var ReplicatedKeys = []string{
	storage.KeySessionHistory,
	storage.KeyForest,
	storage.KeyReminderState,
}

// Path returns the shared name of key within namespace.
func Path(namespace, key string) string {
	return namespace + "/" + key
}

// Memory is an in-process Bridge.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
	// Err, when set, is returned by every call.
	Err error
}

// NewMemory creates an empty bridge.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// Push stores a copy of value.
func (memory *Memory) Push(ctx context.Context, namespace, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.Err != nil {
		return memory.Err
	}
	memory.values[Path(namespace, key)] = append([]byte(nil), value...)
	return nil
}

// PullOnce returns a copy of the stored value.
func (memory *Memory) PullOnce(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.Err != nil {
		return nil, false, memory.Err
	}
	value, ok := memory.values[Path(namespace, key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}
