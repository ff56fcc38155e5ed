// Package storage persists store snapshots as string values under fixed keys,
// the server-side counterpart of browser local storage.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrCorrupt is returned by Adapter.GetJSON when a stored value cannot be decoded.
var ErrCorrupt = errors.New("corrupt stored value")

// Storage is a string key/value backend.
type Storage interface {
	// GetItem returns the value under key and whether it was present.
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Memory is an in-process Storage.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

var _ Storage = (*Memory)(nil)

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }

// None is the Storage of a process without local persistence: reads always
// miss and writes are discarded.
type None struct{}

var _ Storage = None{}

func (None) GetItem(context.Context, string) (string, bool, error) { return "", false, nil }
func (None) SetItem(context.Context, string, string) error         { return nil }
func (None) RemoveItem(context.Context, string) error              { return nil }
func (None) Ping(context.Context) error                            { return nil }
func (None) Close() error                                          { return nil }

// Available is false: there is nothing to persist to.
func (None) Available() bool { return false }

type availability interface {
	Available() bool
}

// Adapter guards a Storage with an environment check. When the backend is
// unavailable every read reports "absent" and every write succeeds without
// touching it.
type Adapter struct {
	store     Storage
	available bool
}

// NewAdapter wraps s. A nil Storage behaves like None.
func NewAdapter(s Storage) *Adapter {
	if s == nil {
		s = None{}
	}
	available := true
	if a, ok := s.(availability); ok {
		available = a.Available()
	}
	return &Adapter{store: s, available: available}
}

// Available reports whether values reach a real backend.
func (a *Adapter) Available() bool {
	return a.available
}

// GetItem returns the raw value under key.
func (a *Adapter) GetItem(ctx context.Context, key string) (string, bool, error) {
	if !a.available {
		return "", false, nil
	}
	v, ok, err := a.store.GetItem(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, ok, nil
}

// SetItem stores value under key.
func (a *Adapter) SetItem(ctx context.Context, key, value string) error {
	if !a.available {
		return nil
	}
	if err := a.store.SetItem(ctx, key, value); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing an absent key is not an error.
func (a *Adapter) RemoveItem(ctx context.Context, key string) error {
	if !a.available {
		return nil
	}
	if err := a.store.RemoveItem(ctx, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// GetJSON decodes the JSON value under key into dst. It reports false when
// the key is absent; a value that does not decode yields ErrCorrupt.
func (a *Adapter) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := a.GetItem(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return true, fmt.Errorf("decode %q: %w: %w", key, ErrCorrupt, err)
	}
	return true, nil
}

// SetJSON stores v under key as JSON.
func (a *Adapter) SetJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return a.SetItem(ctx, key, string(raw))
}

// Ping checks the backend.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.store.Ping(ctx)
}

// Close releases the backend.
func (a *Adapter) Close() error {
	return a.store.Close()
}
