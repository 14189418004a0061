package persistence

import "go.uber.org/zap"

// StoreDecorator wraps a Store with a cross-cutting concern.
type StoreDecorator func(Store) Store

// DecorateStore applies decorators to base in order, so the first decorator
// sits closest to the table and the last one is outermost.
//
// The usual order is circuit breaker, metrics, tracing, logging: rejected
// calls still show up in metrics, spans and logs.
func DecorateStore(base Store, decorators ...StoreDecorator) Store {
	decorated := base
	for _, decorate := range decorators {
		if decorate == nil {
			continue
		}
		decorated = decorate(decorated)
	}
	return decorated
}

// WithCircuitBreaker returns a decorator installing a CircuitBreakerStore.
func WithCircuitBreaker(config CircuitBreakerConfig, logger *zap.Logger) StoreDecorator {
	return func(next Store) Store {
		return NewCircuitBreakerStore(next, config, logger)
	}
}
