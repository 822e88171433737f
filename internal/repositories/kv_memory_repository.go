package repositories

import (
	"fmt"
	"sync"
)

// MemoryKVRepository is an in-memory implementation of KVRepository.
type MemoryKVRepository struct {
	entries map[string]map[string]string
	mu      sync.RWMutex
}

// NewMemoryKVRepository creates a new instance of MemoryKVRepository.
func NewMemoryKVRepository() *MemoryKVRepository {
	return &MemoryKVRepository{
		entries: make(map[string]map[string]string),
	}
}

// Get returns a value by namespace and key.
func (r *MemoryKVRepository) Get(namespace, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.entries[namespace][key]
	if !ok {
		return "", fmt.Errorf("key %s/%s %w", namespace, key, ErrNotFound)
	}
	return value, nil
}

// Set stores a value.
func (r *MemoryKVRepository) Set(namespace, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.entries[namespace]
	if !ok {
		ns = make(map[string]string)
		r.entries[namespace] = ns
	}
	ns[key] = value
	return nil
}

// Delete removes a value.
func (r *MemoryKVRepository) Delete(namespace, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries[namespace], key)
	return nil
}

// List returns a copy of a namespace.
func (r *MemoryKVRepository) List(namespace string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.entries[namespace]))
	for k, v := range r.entries[namespace] {
		out[k] = v
	}
	return out, nil
}

// DeleteNamespace removes a namespace.
func (r *MemoryKVRepository) DeleteNamespace(namespace string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, namespace)
	return nil
}
