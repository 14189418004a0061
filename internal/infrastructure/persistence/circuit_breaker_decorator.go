package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	apperrors "github-ddb-backend/internal/errors"
)

// CircuitBreakerConfig holds configuration for the store circuit breaker.
type CircuitBreakerConfig struct {
	Name         string
	MaxRequests  uint32        // requests allowed through while half-open
	Interval     time.Duration // closed-state window after which counts reset
	Timeout      time.Duration // how long the breaker stays open
	FailureRatio float64
	MinRequests  uint32
}

// DefaultCircuitBreakerConfig returns a default configuration for the circuit breaker.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  5,
		Interval:     30 * time.Second,
		Timeout:      60 * time.Second,
		FailureRatio: 0.8,
		MinRequests:  5,
	}
}

// CircuitBreakerStore rejects calls with a retryable StorageError while the
// table is failing, instead of letting every caller wait for its own timeout.
type CircuitBreakerStore struct {
	next   Store
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewCircuitBreakerStore wraps next with a gobreaker circuit breaker.
func NewCircuitBreakerStore(next Store, config CircuitBreakerConfig, logger *zap.Logger) *CircuitBreakerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CircuitBreakerStore{next: next, logger: logger}
	s.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: isBreakerSuccess,
	})
	return s
}

// A failed condition is an answer from a healthy table, not a fault.
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, ErrConditionFailed) {
		return true
	}
	return !apperrors.IsStorage(err)
}

// State reports the breaker state, for health endpoints and tests.
func (s *CircuitBreakerStore) State() gobreaker.State {
	return s.cb.State()
}

func (s *CircuitBreakerStore) execute(operation string, fn func() (any, error)) (any, error) {
	result, err := s.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.logger.Debug("store call rejected by circuit breaker", zap.String("operation", operation))
		return nil, apperrors.NewTransientStorage(operation, err)
	}
	return result, err
}

func (s *CircuitBreakerStore) Get(ctx context.Context, key Key) (Item, error) {
	res, err := s.execute("GetItem", func() (any, error) { return s.next.Get(ctx, key) })
	if err != nil {
		return nil, err
	}
	item, _ := res.(Item)
	return item, nil
}

func (s *CircuitBreakerStore) Put(ctx context.Context, item Item, cond Condition) error {
	_, err := s.execute("PutItem", func() (any, error) { return nil, s.next.Put(ctx, item, cond) })
	return err
}

func (s *CircuitBreakerStore) Update(ctx context.Context, key Key, changes map[string]any, cond Condition) (Item, error) {
	res, err := s.execute("UpdateItem", func() (any, error) { return s.next.Update(ctx, key, changes, cond) })
	if err != nil {
		return nil, err
	}
	item, _ := res.(Item)
	return item, nil
}

func (s *CircuitBreakerStore) Delete(ctx context.Context, key Key) error {
	_, err := s.execute("DeleteItem", func() (any, error) { return nil, s.next.Delete(ctx, key) })
	return err
}

func (s *CircuitBreakerStore) Increment(ctx context.Context, key Key, attribute string, delta int64) (int64, error) {
	res, err := s.execute("UpdateItem", func() (any, error) { return s.next.Increment(ctx, key, attribute, delta) })
	if err != nil {
		return 0, err
	}
	n, _ := res.(int64)
	return n, nil
}

func (s *CircuitBreakerStore) Query(ctx context.Context, q Query) (*QueryResult, error) {
	res, err := s.execute("Query", func() (any, error) { return s.next.Query(ctx, q) })
	if err != nil {
		return nil, err
	}
	result, _ := res.(*QueryResult)
	return result, nil
}

func (s *CircuitBreakerStore) HealthCheck(ctx context.Context) error {
	_, err := s.execute("DescribeTable", func() (any, error) { return nil, s.next.HealthCheck(ctx) })
	return err
}
