package docstore

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/HerbHall/wakdex/internal/apperr"
)

// DefaultTimeout bounds a Run when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Observer receives the latency and outcome of every store operation.
type Observer interface {
	ObserveQuery(collection, op string, d time.Duration, err error)
}

// Result is one page of documents and the total number of matches.
type Result struct {
	Docs  []Document
	Total int
}

// Executor issues queries against a Store.
type Executor struct {
	store    Store
	timeout  time.Duration
	observer Observer
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout bounds each Run and One call. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeout = d }
}

// WithObserver reports per-operation latency to o.
func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// NewExecutor returns an Executor over s.
func NewExecutor(s Store, opts ...Option) *Executor {
	e := &Executor{store: s, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying store.
func (e *Executor) Store() Store { return e.store }

// Run counts the documents matching q.Filter and fetches the requested page
// concurrently. Both must succeed; the first failure cancels the other and is
// returned as a store error.
func (e *Executor) Run(ctx context.Context, collection string, q Query) (Result, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()

	var (
		total int
		docs  []Document
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		n, err := e.store.Count(gctx, collection, q.Filter)
		e.observe(collection, "count", start, err)
		total = n
		return err
	})
	g.Go(func() error {
		start := time.Now()
		found, err := e.store.Find(gctx, collection, q)
		e.observe(collection, "find", start, err)
		docs = found
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, apperr.Store(err)
	}

	if docs == nil {
		docs = []Document{}
	}
	return Result{Docs: docs, Total: total}, nil
}

// One fetches the first document matching q. It returns ErrNotFound when
// nothing matches.
func (e *Executor) One(ctx context.Context, collection string, q Query) (Document, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()

	q.Skip = 0
	q.Limit = 1
	start := time.Now()
	docs, err := e.store.Find(ctx, collection, q)
	e.observe(collection, "find_one", start, err)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

func (e *Executor) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func (e *Executor) observe(collection, op string, start time.Time, err error) {
	if e.observer != nil {
		e.observer.ObserveQuery(collection, op, time.Since(start), err)
	}
}
