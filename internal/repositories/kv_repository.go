package repositories

import "errors"

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("not found")

// KVRepository defines the interface for the client-persisted key-value storage.
// Values are grouped into namespaces (one per session, one for the gallery).
type KVRepository interface {
	Get(namespace, key string) (string, error)
	Set(namespace, key, value string) error
	Delete(namespace, key string) error
	List(namespace string) (map[string]string, error)
	DeleteNamespace(namespace string) error
}
