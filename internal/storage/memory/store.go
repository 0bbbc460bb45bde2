// Package memory stores objects in-memory for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vadviktor/animefeed/internal/storage"
)

// Object is a stored blob plus its metadata.
type Object struct {
	Data        []byte
	ContentType string
	Class       storage.Class
	PublicRead  bool
}

// Store is an in-memory ObjectStore with call counters for assertions.
type Store struct {
	mu      sync.Mutex
	objects map[string]*Object

	// Call counters, readable through accessors.
	existsCalls int
	putCalls    int
	aclCalls    int

	// FailACL makes SetPublicRead return an error, for testing the
	// non-fatal ACL path.
	FailACL bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{objects: make(map[string]*Object)}
}

// Seed inserts an object directly, bypassing counters.
func (s *Store) Seed(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = &Object{Data: append([]byte(nil), data...)}
}

// Exists reports whether key is present.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.existsCalls++
	_, ok := s.objects[key]
	return ok, nil
}

// Put stores data under key.
func (s *Store) Put(_ context.Context, key string, data []byte, contentType string, class storage.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	s.objects[key] = &Object{
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
		Class:       class,
	}
	return nil
}

// SetPublicRead flags the object public.
func (s *Store) SetPublicRead(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aclCalls++
	if s.FailACL {
		return fmt.Errorf("acl rejected for %s", key)
	}
	if obj, ok := s.objects[key]; ok {
		obj.PublicRead = true
	}
	return nil
}

// PublicURL returns a memory:// pseudo URL.
func (s *Store) PublicURL(key string) string {
	return fmt.Sprintf("memory://%s", key)
}

// Get returns a stored object and whether it exists.
func (s *Store) Get(key string) (*Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// PutCalls returns how many uploads were issued.
func (s *Store) PutCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putCalls
}

// ExistsCalls returns how many existence probes were issued.
func (s *Store) ExistsCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existsCalls
}

// ACLCalls returns how many public-read calls were issued.
func (s *Store) ACLCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aclCalls
}

// Keys returns all stored keys.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}
