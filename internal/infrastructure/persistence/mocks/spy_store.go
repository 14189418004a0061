// Package mocks provides test doubles for the persistence contract.
package mocks

import (
	"context"
	"sync"

	"github-ddb-backend/internal/infrastructure/persistence"
)

// Method names accepted by SetError and Calls.
const (
	MethodGet         = "Get"
	MethodPut         = "Put"
	MethodUpdate      = "Update"
	MethodDelete      = "Delete"
	MethodIncrement   = "Increment"
	MethodQuery       = "Query"
	MethodHealthCheck = "HealthCheck"
)

// SpyStore wraps a Store, counting calls per method. Configured errors are
// returned instead of calling through.
type SpyStore struct {
	next persistence.Store

	mu           sync.Mutex
	calls        map[string]int
	shouldFailOn map[string]error
}

var _ persistence.Store = (*SpyStore)(nil)

// NewSpyStore creates a spy in front of next.
func NewSpyStore(next persistence.Store) *SpyStore {
	return &SpyStore{
		next:         next,
		calls:        make(map[string]int),
		shouldFailOn: make(map[string]error),
	}
}

// SetError configures the spy to fail every call of method with err.
func (s *SpyStore) SetError(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (s *SpyStore) ClearErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shouldFailOn = make(map[string]error)
}

// Calls returns how often method was invoked, failed calls included.
func (s *SpyStore) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// Reset zeroes the call counters.
func (s *SpyStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

func (s *SpyStore) record(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
	return s.shouldFailOn[method]
}

func (s *SpyStore) Get(ctx context.Context, key persistence.Key) (persistence.Item, error) {
	if err := s.record(MethodGet); err != nil {
		return nil, err
	}
	return s.next.Get(ctx, key)
}

func (s *SpyStore) Put(ctx context.Context, item persistence.Item, cond persistence.Condition) error {
	if err := s.record(MethodPut); err != nil {
		return err
	}
	return s.next.Put(ctx, item, cond)
}

func (s *SpyStore) Update(ctx context.Context, key persistence.Key, changes map[string]any, cond persistence.Condition) (persistence.Item, error) {
	if err := s.record(MethodUpdate); err != nil {
		return nil, err
	}
	return s.next.Update(ctx, key, changes, cond)
}

func (s *SpyStore) Delete(ctx context.Context, key persistence.Key) error {
	if err := s.record(MethodDelete); err != nil {
		return err
	}
	return s.next.Delete(ctx, key)
}

func (s *SpyStore) Increment(ctx context.Context, key persistence.Key, attribute string, delta int64) (int64, error) {
	if err := s.record(MethodIncrement); err != nil {
		return 0, err
	}
	return s.next.Increment(ctx, key, attribute, delta)
}

func (s *SpyStore) Query(ctx context.Context, q persistence.Query) (*persistence.QueryResult, error) {
	if err := s.record(MethodQuery); err != nil {
		return nil, err
	}
	return s.next.Query(ctx, q)
}

func (s *SpyStore) HealthCheck(ctx context.Context) error {
	if err := s.record(MethodHealthCheck); err != nil {
		return err
	}
	return s.next.HealthCheck(ctx)
}
