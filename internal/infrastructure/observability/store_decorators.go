package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github-ddb-backend/internal/infrastructure/persistence"
)

// ============================================================================
// METRICS
// ============================================================================

// MetricsStore counts and times every store call.
type MetricsStore struct {
	next      persistence.Store
	collector *Collector
}

var _ persistence.Store = (*MetricsStore)(nil)

func NewMetricsStore(next persistence.Store, collector *Collector) *MetricsStore {
	return &MetricsStore{next: next, collector: collector}
}

// WithMetrics decorates a store with NewMetricsStore.
func WithMetrics(collector *Collector) persistence.StoreDecorator {
	return func(next persistence.Store) persistence.Store {
		return NewMetricsStore(next, collector)
	}
}

func (s *MetricsStore) observe(operation string, start time.Time, err error) {
	s.collector.StoreOperations.WithLabelValues(operation, StatusOf(err)).Inc()
	s.collector.StoreDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (s *MetricsStore) Get(ctx context.Context, key persistence.Key) (persistence.Item, error) {
	start := time.Now()
	item, err := s.next.Get(ctx, key)
	s.observe("Get", start, err)
	return item, err
}

func (s *MetricsStore) Put(ctx context.Context, item persistence.Item, cond persistence.Condition) error {
	start := time.Now()
	err := s.next.Put(ctx, item, cond)
	s.observe("Put", start, err)
	return err
}

func (s *MetricsStore) Update(ctx context.Context, key persistence.Key, changes map[string]any, cond persistence.Condition) (persistence.Item, error) {
	start := time.Now()
	item, err := s.next.Update(ctx, key, changes, cond)
	s.observe("Update", start, err)
	return item, err
}

func (s *MetricsStore) Delete(ctx context.Context, key persistence.Key) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	s.observe("Delete", start, err)
	return err
}

func (s *MetricsStore) Increment(ctx context.Context, key persistence.Key, attr string, delta int64) (int64, error) {
	start := time.Now()
	value, err := s.next.Increment(ctx, key, attr, delta)
	s.observe("Increment", start, err)
	if err == nil {
		s.collector.SequenceValues.WithLabelValues(attr).Inc()
	}
	return value, err
}

func (s *MetricsStore) Query(ctx context.Context, q persistence.Query) (*persistence.QueryResult, error) {
	start := time.Now()
	res, err := s.next.Query(ctx, q)
	s.observe("Query", start, err)
	return res, err
}

func (s *MetricsStore) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := s.next.HealthCheck(ctx)
	s.observe("HealthCheck", start, err)
	return err
}

// ============================================================================
// TRACING
// ============================================================================

// TracingStore opens a client span around every store call.
type TracingStore struct {
	next   persistence.Store
	tracer trace.Tracer
}

var _ persistence.Store = (*TracingStore)(nil)

func NewTracingStore(next persistence.Store, tracer trace.Tracer) *TracingStore {
	return &TracingStore{next: next, tracer: tracer}
}

// WithTracing decorates a store with NewTracingStore.
func WithTracing(tracer trace.Tracer) persistence.StoreDecorator {
	return func(next persistence.Store) persistence.Store {
		return NewTracingStore(next, tracer)
	}
}

func (s *TracingStore) start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.system.name", "aws.dynamodb"))
	return s.tracer.Start(ctx, "store."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...))
}

func keyAttributes(key persistence.Key) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("store.pk", key.PartitionKey),
		attribute.String("store.sk", key.SortKey),
	}
}

func end(span trace.Span, err error) {
	switch {
	case err == nil:
	case errors.Is(err, persistence.ErrConditionFailed):
		span.SetAttributes(attribute.Bool("store.condition_failed", true))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *TracingStore) Get(ctx context.Context, key persistence.Key) (persistence.Item, error) {
	ctx, span := s.start(ctx, "Get", keyAttributes(key)...)
	item, err := s.next.Get(ctx, key)
	span.SetAttributes(attribute.Bool("store.found", item != nil))
	end(span, err)
	return item, err
}

func (s *TracingStore) Put(ctx context.Context, item persistence.Item, cond persistence.Condition) error {
	ctx, span := s.start(ctx, "Put", attribute.String("store.condition", cond.String()))
	err := s.next.Put(ctx, item, cond)
	end(span, err)
	return err
}

func (s *TracingStore) Update(ctx context.Context, key persistence.Key, changes map[string]any, cond persistence.Condition) (persistence.Item, error) {
	attrs := append(keyAttributes(key),
		attribute.String("store.condition", cond.String()),
		attribute.Int("store.attributes", len(changes)))
	ctx, span := s.start(ctx, "Update", attrs...)
	item, err := s.next.Update(ctx, key, changes, cond)
	end(span, err)
	return item, err
}

func (s *TracingStore) Delete(ctx context.Context, key persistence.Key) error {
	ctx, span := s.start(ctx, "Delete", keyAttributes(key)...)
	err := s.next.Delete(ctx, key)
	end(span, err)
	return err
}

func (s *TracingStore) Increment(ctx context.Context, key persistence.Key, attr string, delta int64) (int64, error) {
	ctx, span := s.start(ctx, "Increment", keyAttributes(key)...)
	value, err := s.next.Increment(ctx, key, attr, delta)
	span.SetAttributes(attribute.Int64("store.value", value))
	end(span, err)
	return value, err
}

func (s *TracingStore) Query(ctx context.Context, q persistence.Query) (*persistence.QueryResult, error) {
	ctx, span := s.start(ctx, "Query",
		attribute.String("store.index", string(q.Index)),
		attribute.String("store.pk", q.PartitionKey),
		attribute.String("store.sk_prefix", q.SortKeyPrefix))
	res, err := s.next.Query(ctx, q)
	if res != nil {
		span.SetAttributes(
			attribute.Int("store.items", len(res.Items)),
			attribute.Bool("store.has_more", len(res.LastEvaluated) > 0))
	}
	end(span, err)
	return res, err
}

func (s *TracingStore) HealthCheck(ctx context.Context) error {
	ctx, span := s.start(ctx, "HealthCheck")
	err := s.next.HealthCheck(ctx)
	end(span, err)
	return err
}

// ============================================================================
// LOGGING
// ============================================================================

// LoggingStore logs every store call at Debug, slow calls at Warn and
// failures at Error. Items are never logged, only their keys.
type LoggingStore struct {
	next          persistence.Store
	logger        *zap.Logger
	slowThreshold time.Duration
}

var _ persistence.Store = (*LoggingStore)(nil)

// NewLoggingStore creates a logging decorator. A zero slowThreshold disables
// slow-call warnings.
func NewLoggingStore(next persistence.Store, logger *zap.Logger, slowThreshold time.Duration) *LoggingStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingStore{next: next, logger: logger.Named("store"), slowThreshold: slowThreshold}
}

// WithLogging decorates a store with NewLoggingStore.
func WithLogging(logger *zap.Logger, slowThreshold time.Duration) persistence.StoreDecorator {
	return func(next persistence.Store) persistence.Store {
		return NewLoggingStore(next, logger, slowThreshold)
	}
}

func (s *LoggingStore) log(operation string, start time.Time, err error, fields ...zap.Field) {
	elapsed := time.Since(start)
	fields = append(fields,
		zap.String("operation", operation),
		zap.Duration("duration", elapsed),
		zap.String("status", StatusOf(err)))

	switch status := StatusOf(err); {
	case status == StatusError || status == StatusRetryable:
		s.logger.Error("store call failed", append(fields, zap.Error(err))...)
	case s.slowThreshold > 0 && elapsed > s.slowThreshold:
		s.logger.Warn("slow store call", append(fields, zap.Duration("threshold", s.slowThreshold))...)
	default:
		s.logger.Debug("store call", fields...)
	}
}

func keyFields(key persistence.Key) []zap.Field {
	return []zap.Field{zap.String("pk", key.PartitionKey), zap.String("sk", key.SortKey)}
}

func (s *LoggingStore) Get(ctx context.Context, key persistence.Key) (persistence.Item, error) {
	start := time.Now()
	item, err := s.next.Get(ctx, key)
	s.log("Get", start, err, keyFields(key)...)
	return item, err
}

func (s *LoggingStore) Put(ctx context.Context, item persistence.Item, cond persistence.Condition) error {
	start := time.Now()
	err := s.next.Put(ctx, item, cond)
	s.log("Put", start, err, zap.Stringer("condition", cond))
	return err
}

func (s *LoggingStore) Update(ctx context.Context, key persistence.Key, changes map[string]any, cond persistence.Condition) (persistence.Item, error) {
	start := time.Now()
	item, err := s.next.Update(ctx, key, changes, cond)
	s.log("Update", start, err, append(keyFields(key), zap.Stringer("condition", cond))...)
	return item, err
}

func (s *LoggingStore) Delete(ctx context.Context, key persistence.Key) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	s.log("Delete", start, err, keyFields(key)...)
	return err
}

func (s *LoggingStore) Increment(ctx context.Context, key persistence.Key, attr string, delta int64) (int64, error) {
	start := time.Now()
	value, err := s.next.Increment(ctx, key, attr, delta)
	s.log("Increment", start, err, append(keyFields(key), zap.Int64("value", value))...)
	return value, err
}

func (s *LoggingStore) Query(ctx context.Context, q persistence.Query) (*persistence.QueryResult, error) {
	start := time.Now()
	res, err := s.next.Query(ctx, q)
	fields := []zap.Field{
		zap.String("index", string(q.Index)),
		zap.String("pk", q.PartitionKey),
		zap.String("sk_prefix", q.SortKeyPrefix),
	}
	if res != nil {
		fields = append(fields, zap.Int("items", len(res.Items)))
	}
	s.log("Query", start, err, fields...)
	return res, err
}

func (s *LoggingStore) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := s.next.HealthCheck(ctx)
	s.log("HealthCheck", start, err)
	return err
}
