// internal/registry/store.go
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrBadPort is returned synchronously for out-of-range ports; it is never
// logged server-side.
var ErrBadPort = errors.New("invalid port")

// Host is one registered game server endpoint.
type Host struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Validate checks the endpoint fields before they enter the store.
func (h Host) Validate() error {
	if h.Host == "" {
		return errors.New("missing host")
	}
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrBadPort, h.Port)
	}
	return nil
}

func (h Host) key() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// Store holds live game server endpoints. Registering an endpoint that is
// already present refreshes its liveness deadline.
type Store interface {
	Register(ctx context.Context, h Host) error
	List(ctx context.Context) ([]Host, error)
}

// MemoryStore is the default single-process store. Entries expire after the
// TTL unless re-registered.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry

	// now is swappable for expiry tests.
	now func() time.Time
}

type memoryEntry struct {
	host     Host
	deadline time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Register(ctx context.Context, h Host) error {
	if err := h.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[h.key()] = memoryEntry{host: h, deadline: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Host, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	hosts := make([]Host, 0, len(s.entries))
	for key, e := range s.entries {
		if now.After(e.deadline) {
			delete(s.entries, key)
			continue
		}
		hosts = append(hosts, e.host)
	}
	return hosts, nil
}
