package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/mightbeian/HacMan/internal/domain/model"
	"github.com/mightbeian/HacMan/pkg/logger"
)

// Default refresher configuration constants.
const (
	defaultRefreshInterval = 5 * time.Minute
	defaultFetchTimeout    = 10 * time.Second
)

// Source fetches the challenge set from the external catalog store.
type Source interface {
	Fetch(ctx context.Context) ([]model.ChallengeMeta, error)
}

// Refresher periodically pulls the catalog from a Source into a Store.
// A failed or timed-out fetch leaves the last good snapshot in place and
// marks the store degraded; reads keep working throughout.
type Refresher struct {
	store    *Store
	source   Source
	interval time.Duration
	timeout  time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// RefresherOption applies a configuration option to the Refresher.
type RefresherOption func(*Refresher)

// WithInterval sets the pull interval.
func WithInterval(interval time.Duration) RefresherOption {
	return func(r *Refresher) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

// WithFetchTimeout bounds a single fetch from the external source.
func WithFetchTimeout(timeout time.Duration) RefresherOption {
	return func(r *Refresher) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// NewRefresher creates a refresher for the given store and source.
func NewRefresher(store *Store, source Source, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		store:    store,
		source:   source,
		interval: defaultRefreshInterval,
		timeout:  defaultFetchTimeout,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("catalog-refresher"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the pull loop until ctx is canceled or Stop is called.
func (r *Refresher) Start(ctx context.Context) {
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			case <-ticker.C:
				r.refreshOnce(ctx)
			}
		}
	}()
}

// Stop terminates the pull loop and waits for it to exit.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.done
}

func (r *Refresher) refreshOnce(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	metas, err := r.source.Fetch(fetchCtx)
	if err != nil {
		r.store.markDegraded()
		r.logger.Warn(ctx, "catalog fetch failed; continuing on last good snapshot", logger.Error(err))
		return
	}
	if err := r.store.Refresh(ctx, metas); err != nil {
		r.store.markDegraded()
		r.logger.Warn(ctx, "catalog snapshot rejected; continuing on last good snapshot", logger.Error(err))
		return
	}
	r.logger.Debug(ctx, "catalog refreshed", logger.Int("challenges", len(metas)))
}
