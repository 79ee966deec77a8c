package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/AlibekovAA/notes/internal/common/resilience"
	"github.com/AlibekovAA/notes/internal/observability/metrics"
)

// InstrumentedStore routes calls through a circuit breaker and records
// per-collection operation metrics.
type InstrumentedStore struct {
	inner Store
	cb    *resilience.CircuitBreaker
}

func NewInstrumentedStore(inner Store, cb *resilience.CircuitBreaker) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, cb: cb}
}

func (s *InstrumentedStore) call(ctx context.Context, op, collection string, fn func(context.Context) error) error {
	start := time.Now()
	err := s.cb.Call(ctx, fn)

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	metrics.DocumentOperationsTotal.WithLabelValues(op, collection, outcome).Inc()
	metrics.DocumentOperationDurationSeconds.WithLabelValues(op, collection).Observe(time.Since(start).Seconds())
	return err
}

func (s *InstrumentedStore) Put(ctx context.Context, collection, id string, fields Fields) error {
	return s.call(ctx, "put", collection, func(ctx context.Context) error {
		return s.inner.Put(ctx, collection, id, fields)
	})
}

func (s *InstrumentedStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var doc Document
	err := s.call(ctx, "get", collection, func(ctx context.Context) error {
		var err error
		doc, err = s.inner.Get(ctx, collection, id)
		return err
	})
	return doc, err
}

func (s *InstrumentedStore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	var id string
	err := s.call(ctx, "add", collection, func(ctx context.Context) error {
		var err error
		id, err = s.inner.Add(ctx, collection, fields)
		return err
	})
	return id, err
}

func (s *InstrumentedStore) Query(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	var docs []Document
	err := s.call(ctx, "query", collection, func(ctx context.Context) error {
		var err error
		docs, err = s.inner.Query(ctx, collection, filter)
		return err
	})
	if err == nil {
		metrics.DocumentQueryResults.WithLabelValues(collection).Observe(float64(len(docs)))
	}
	return docs, err
}

func (s *InstrumentedStore) Merge(ctx context.Context, collection, id string, fields Fields) error {
	return s.call(ctx, "merge", collection, func(ctx context.Context) error {
		return s.inner.Merge(ctx, collection, id, fields)
	})
}

func (s *InstrumentedStore) Remove(ctx context.Context, collection, id string) error {
	return s.call(ctx, "remove", collection, func(ctx context.Context) error {
		return s.inner.Remove(ctx, collection, id)
	})
}

