package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Keys of the persisted documents.
const (
	KeyCurrentSession = "currentSession"
	KeyReminderState  = "reminderState"
	KeySessionHistory = "sessionHistory"
	KeyForest         = "forest"
	KeySpaceID        = "spaceId"
	KeyPlayback       = "playback"
)

// ErrClosed indicates use of a store after Close.
var ErrClosed = errors.New("store is closed")

// Store is durable key/value storage surviving process restarts.
type Store interface {
	Load(key string) ([]byte, bool, error)
	Save(key string, value []byte) error
	Close() error
}

// LoadDocument decodes the JSON document under key. Missing, null, corrupt and
// invalid documents all report false; corruption is logged, never returned.
func LoadDocument[T any](store Store, key string, validate func(T) error) (T, bool) {
	var document T
	raw, ok, err := store.Load(key)
	if err != nil {
		log.Printf("load %s: %v", key, err)
		return document, false
	}
	if !ok || IsNull(raw) {
		return document, false
	}
	if err := json.Unmarshal(raw, &document); err != nil {
		log.Printf("load %s: discarding corrupt document: %v", key, err)
		var empty T
		return empty, false
	}
	if validate != nil {
		if err := validate(document); err != nil {
			log.Printf("load %s: discarding invalid document: %v", key, err)
			var empty T
			return empty, false
		}
	}
	return document, true
}

// EncodeDocument serializes value the way SaveDocument stores it.
func EncodeDocument(value any) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return payload, nil
}

// SaveDocument serializes value as JSON under key.
func SaveDocument(store Store, key string, value any) error {
	payload, err := EncodeDocument(value)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	if err := store.Save(key, payload); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// IsNull reports whether raw is empty or the JSON literal null.
func IsNull(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
	closed bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// Load returns a copy of the value stored under key.
func (memory *Memory) Load(key string) ([]byte, bool, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.closed {
		return nil, false, ErrClosed
	}
	value, ok := memory.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Save stores a copy of value under key.
func (memory *Memory) Save(key string, value []byte) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.closed {
		return ErrClosed
	}
	memory.values[key] = append([]byte(nil), value...)
	return nil
}

// Close marks the store closed.
func (memory *Memory) Close() error {
	memory.mu.Lock()
	memory.closed = true
	memory.mu.Unlock()
	return nil
}
