package repository

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mightbeian/HacMan/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: totalPoints DESC, then tieBreak ASC (rewards whoever reached a
// total first), then playerID ASC. The BST comparator treats "less" as
// "ranks earlier", so an in-order traversal produces the leaderboard from
// best to worst. Subtree sizes make rank queries and paging O(log n + k).

// key is the composite ordering key for one entry.
type key struct {
	points int
	ts     int64 // tieBreak as unix nanoseconds
	id     string
}

// less reports whether a ranks earlier than b on the leaderboard.
func less(a, b key) bool {
	if a.points != b.points {
		return a.points > b.points // higher total ranks earlier
	}
	if a.ts != b.ts {
		return a.ts < b.ts // earlier crossing ranks earlier
	}
	return a.id < b.id // deterministic final tie-break
}

// treap node
type node struct {
	key   key
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, k key, prio uint64) *node {
	if n == nil {
		return &node{key: k, prio: prio, size: 1}
	}
	if less(k, n.key) {
		n.left = insert(n.left, k, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, k, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, k key) *node {
	if n == nil {
		return nil
	}
	if n.key == k {
		// Merge children by rotating the higher priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, k)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, k)
		}
	} else if less(k, n.key) {
		n.left = deleteNode(n.left, k)
	} else {
		n.right = deleteNode(n.right, k)
	}
	fix(n)
	return n
}

// rankOf returns the 1-based position of k in the in-order sequence, or 0
// if k is absent. O(log n) via subtree sizes.
func rankOf(n *node, k key) int {
	rank := 0
	for n != nil {
		switch {
		case less(k, n.key):
			n = n.left
		case n.key == k:
			return rank + nsize(n.left) + 1
		default:
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// appendPage appends entries in rank order, skipping the first skip
// entries, until limit entries are collected. Returns the remaining skip.
func appendPage(n *node, skip, limit int, out *[]Entry) int {
	if n == nil || len(*out) >= limit {
		return skip
	}
	if skip >= n.size {
		return skip - n.size
	}
	skip = appendPage(n.left, skip, limit, out)
	if len(*out) < limit {
		if skip > 0 {
			skip--
		} else {
			*out = append(*out, Entry{
				PlayerID:    n.key.id,
				TotalPoints: n.key.points,
				TieBreak:    time.Unix(0, n.key.ts),
			})
		}
	}
	return appendPage(n.right, skip, limit, out)
}

// TreapStore implements Store with a size-augmented treap guarded by a
// single RWMutex. The contract hides the locking discipline; a sharded
// variant can replace this without touching callers.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]key
}

// NewTreapStore constructs an empty treap store.
func NewTreapStore(ctx context.Context) *TreapStore {
	return &TreapStore{byID: make(map[string]key)}
}

// Upsert implements Store.Upsert with O(log n) expected time. Repositioning
// is a delete of the old key plus an insert of the new one under a single
// critical section, so readers never observe a player twice or not at all.
func (s *TreapStore) Upsert(ctx context.Context, playerID string, totalPoints int, tieBreak time.Time) error {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardUpsertLatency(float64(time.Since(start).Milliseconds()))
	}()

	k := key{points: totalPoints, ts: tieBreak.UnixNano(), id: playerID}

	s.mu.Lock()
	if old, ok := s.byID[playerID]; ok {
		if old == k {
			s.mu.Unlock()
			return nil
		}
		s.root = deleteNode(s.root, old)
	}
	s.byID[playerID] = k
	s.root = insert(s.root, k, rand.Uint64())
	count := len(s.byID)
	s.mu.Unlock()

	metrics.RecordLeaderboardUpsert()
	metrics.UpdateLeaderboardPlayers(count)
	return nil
}

// RankOf returns the current rank and entry for a player in O(log n).
func (s *TreapStore) RankOf(ctx context.Context, playerID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.byID[playerID]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return Entry{
		Rank:        rankOf(s.root, k),
		PlayerID:    playerID,
		TotalPoints: k.points,
		TieBreak:    time.Unix(0, k.ts),
	}, nil
}

// Page returns entries [offset, offset+limit) in rank order with global
// ranks populated.
func (s *TreapStore) Page(ctx context.Context, offset, limit int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if offset < 0 || limit < 1 {
		return nil, ErrInvalidPage
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, limit)
	appendPage(s.root, offset, limit, &out)
	for i := range out {
		out[i].Rank = offset + i + 1
	}
	return out, nil
}

// Count returns the number of players on the leaderboard.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
