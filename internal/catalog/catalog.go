// Package catalog maintains the read-only challenge metadata snapshot.
//
// The catalog is owned by an external collaborator; the core only consumes
// immutable snapshots of it. Snapshots are swapped atomically so readers
// never observe a partially replaced catalog, and every swap bumps the
// snapshot version used as a cache key by derived-state consumers.
package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mightbeian/HacMan/internal/domain/model"
	"github.com/mightbeian/HacMan/pkg/metrics"
)

// Snapshot is an immutable view of the catalog at one refresh point.
type Snapshot struct {
	version    uint64
	byID       map[string]model.ChallengeMeta
	byCategory map[model.Category]int
}

// Version returns the monotonically increasing snapshot version.
func (s *Snapshot) Version() uint64 { return s.version }

// Get returns the metadata for a challenge id.
func (s *Snapshot) Get(id string) (model.ChallengeMeta, bool) {
	meta, ok := s.byID[id]
	return meta, ok
}

// All returns every challenge in the snapshot. The slice is a copy.
func (s *Snapshot) All() []model.ChallengeMeta {
	out := make([]model.ChallengeMeta, 0, len(s.byID))
	for _, meta := range s.byID {
		out = append(out, meta)
	}
	return out
}

// TotalByCategory returns the number of catalog challenges per category.
func (s *Snapshot) TotalByCategory() map[model.Category]int {
	out := make(map[model.Category]int, len(s.byCategory))
	for c, n := range s.byCategory {
		out[c] = n
	}
	return out
}

// Count returns the number of challenges in the snapshot.
func (s *Snapshot) Count() int { return len(s.byID) }

// Store holds the current catalog snapshot and swaps it atomically on
// refresh. Reads never fail: when a refresh fails upstream the store keeps
// serving the last good snapshot and raises the degraded signal.
type Store struct {
	current  atomic.Pointer[Snapshot]
	version  atomic.Uint64
	degraded atomic.Bool
}

// NewStore creates a catalog store with an empty initial snapshot.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{
		byID:       map[string]model.ChallengeMeta{},
		byCategory: map[model.Category]int{},
	})
	return s
}

// Refresh replaces the snapshot with the given challenge set. Partial and
// total replacement are both legal; ledger history is unaffected either way.
func (s *Store) Refresh(ctx context.Context, metas []model.ChallengeMeta) error {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("catalog refresh aborted: %w", err)
	}

	byID := make(map[string]model.ChallengeMeta, len(metas))
	byCategory := make(map[model.Category]int, len(metas))
	for _, meta := range metas {
		if meta.ID == "" {
			return fmt.Errorf("%w: challenge with empty id", ErrInvalidSnapshot)
		}
		if meta.BasePoints < 0 {
			return fmt.Errorf("%w: challenge %s has negative base points", ErrInvalidSnapshot, meta.ID)
		}
		if _, dup := byID[meta.ID]; dup {
			return fmt.Errorf("%w: duplicate challenge id %s", ErrInvalidSnapshot, meta.ID)
		}
		byID[meta.ID] = meta
		byCategory[meta.Category]++
	}

	snap := &Snapshot{
		version:    s.version.Add(1),
		byID:       byID,
		byCategory: byCategory,
	}
	s.current.Store(snap)
	s.degraded.Store(false)

	metrics.RecordCatalogRefresh()
	metrics.UpdateCatalogChallenges(len(byID))
	metrics.UpdateCatalogDegraded(false)
	metrics.RecordCatalogRefreshLatency(float64(time.Since(start).Milliseconds()))
	return nil
}

// Snapshot returns the current snapshot. Never nil.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Get resolves a challenge id against the current snapshot.
func (s *Store) Get(id string) (model.ChallengeMeta, bool) {
	return s.current.Load().Get(id)
}

// Degraded reports whether the store is serving a stale snapshot because
// the most recent refresh attempt failed.
func (s *Store) Degraded() bool { return s.degraded.Load() }

// markDegraded flags the store as running on the last good snapshot.
func (s *Store) markDegraded() {
	s.degraded.Store(true)
	metrics.RecordCatalogRefreshError()
	metrics.UpdateCatalogDegraded(true)
}
