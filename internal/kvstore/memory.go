package kvstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sahilkr01/drcuberstore/prometheus"
)

const backendMemory = "memory"

// Memory is a process-local Store. A quota of zero or less disables the size limit.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
	used    int64
	quota   int64
}

// NewMemory creates an empty in-memory store limited to quota bytes of keys and values
func NewMemory(quota int64) *Memory {
	return &Memory{
		entries: make(map[string]string),
		quota:   quota,
	}
}

// Get returns the value stored under key
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	defer prometheus.TrackStorageOperation("get", backendMemory)(time.Now())
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok, nil
}

// Set stores value under key, replacing any previous value
func (m *Memory) Set(ctx context.Context, key, value string) error {
	defer prometheus.TrackStorageOperation("set", backendMemory)(time.Now())
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + entrySize(key, value)
	if old, ok := m.entries[key]; ok {
		used -= entrySize(key, old)
	}
	if m.quota > 0 && used > m.quota {
		prometheus.RecordStorageError("set", "quota_exceeded")
		return fmt.Errorf("set %q (%d of %d bytes): %w", key, used, m.quota, ErrQuotaExceeded)
	}

	m.entries[key] = value
	m.used = used
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (m *Memory) Remove(ctx context.Context, key string) error {
	defer prometheus.TrackStorageOperation("remove", backendMemory)(time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.entries[key]; ok {
		m.used -= entrySize(key, old)
		delete(m.entries, key)
	}
	return nil
}

// Used returns the number of bytes currently stored
func (m *Memory) Used() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used
}

// SetQuota changes the size limit. Entries already stored are kept even when they exceed it.
func (m *Memory) SetQuota(quota int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quota = quota
}
