// Package memory is an in-process provider.ObjectStore.
//
// Keys are listed in lexical order, the way S3 returns them. Failures can
// be injected per operation and per key so callers can exercise error paths.
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/3leaps/bwing/pkg/provider"
)

var _ provider.ObjectStore = (*Store)(nil)

// Object is a stored object body plus its content type.
type Object struct {
	Body        []byte
	ContentType string
}

// Call records one operation against the store.
type Call struct {
	Op  string
	Key string
}

// Store keeps objects in a map. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]Object
	calls   []Call

	// ListErr, when set, is returned by ListObjects.
	ListErr error
	// PutErr, when set, is returned by PutObject.
	PutErr error
	// DeleteErrs maps a key to the error DeleteObject returns for it.
	DeleteErrs map[string]error
}

// New creates an empty store for bucket.
func New(bucket string) *Store {
	return &Store{
		bucket:  bucket,
		objects: make(map[string]Object),
	}
}

// Seed stores each key with a small generated body.
func (s *Store) Seed(keys ...string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.objects[k] = Object{Body: []byte("content for " + k)}
	}
	return s
}

// ListObjects returns the sorted keys starting with prefix.
func (s *Store) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Op: "ListObjects", Key: prefix})
	if s.ListErr != nil {
		return nil, s.wrap("ListObjects", "", s.ListErr)
	}

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// PutObject reads body fully and stores it under key.
func (s *Store) PutObject(ctx context.Context, key string, body io.Reader, opts provider.PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return s.wrap("PutObject", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Op: "PutObject", Key: key})
	if s.PutErr != nil {
		return s.wrap("PutObject", key, s.PutErr)
	}
	s.objects[key] = Object{Body: bytes.Clone(data), ContentType: opts.ContentType}
	return nil
}

// DeleteObject removes key. Deleting a missing key succeeds, as on S3.
func (s *Store) DeleteObject(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Op: "DeleteObject", Key: key})
	if err, ok := s.DeleteErrs[key]; ok {
		return s.wrap("DeleteObject", key, err)
	}
	delete(s.objects, key)
	return nil
}

// Get returns the object at key.
func (s *Store) Get(key string) (Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Keys returns every stored key in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Calls returns the recorded operations, oldest first.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsFor returns the keys passed to op, oldest first.
func (s *Store) CallsFor(op string) []string {
	var keys []string
	for _, c := range s.Calls() {
		if c.Op == op {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

func (s *Store) wrap(op, key string, err error) error {
	return &provider.ProviderError{
		Op:       op,
		Provider: provider.ProviderMemory,
		Bucket:   s.bucket,
		Key:      key,
		Err:      err,
	}
}
