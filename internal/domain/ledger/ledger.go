// Package ledger holds the append-only record of solve events.
//
// The ledger is the single source of truth: profiles, leaderboard entries
// and recommendations are all derived views over it. Events are immutable,
// created once per genuine first solve; a resubmission for the same
// (player, challenge) pair is a defined no-op, which is the platform's
// anti-replay guarantee.
package ledger

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mightbeian/HacMan/internal/domain/model"
	"github.com/mightbeian/HacMan/pkg/metrics"
)

// Status is the outcome of a record attempt.
type Status int

// Record outcomes. Duplicate is idempotent and side-effect free.
const (
	StatusAccepted Status = iota
	StatusDuplicate
)

// Ledger is an in-memory append-only solve log with per-player
// serialization. Operations on different players proceed in parallel;
// operations on one player are serialized by that player's stripe lock,
// which makes the duplicate check atomic with the insert.
type Ledger struct {
	stripes []stripe
}

type stripe struct {
	mu      sync.RWMutex
	players map[string]*playerLog
}

// playerLog is the per-player slice of the ledger. version bumps on every
// accepted write and keys all derived-state caches for the player.
type playerLog struct {
	events  []model.SolveEvent
	solved  map[string]struct{}
	version uint64
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{}
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	l.stripes = make([]stripe, cfg.stripeCount)
	for i := range l.stripes {
		l.stripes[i].players = make(map[string]*playerLog)
	}
	return l
}

func (l *Ledger) stripeFor(playerID string) *stripe {
	h := fnv.New32a()
	_, _ = h.Write([]byte(playerID))
	return &l.stripes[int(h.Sum32())%len(l.stripes)]
}

// Record appends a solve event unless one already exists for the same
// (player, challenge) pair. Validation failures are rejected before any
// state change. On StatusAccepted the returned event carries the assigned
// event id and becomes visible atomically to readers of this player.
func (l *Ledger) Record(ctx context.Context, playerID, challengeID string, pointsAwarded int, solvedAt time.Time, durationSeconds int) (Status, model.SolveEvent, error) {
	switch {
	case playerID == "":
		metrics.RecordSolveRejected("empty_player_id")
		return 0, model.SolveEvent{}, ErrValidation
	case challengeID == "":
		metrics.RecordSolveRejected("empty_challenge_id")
		return 0, model.SolveEvent{}, ErrValidation
	case pointsAwarded < 0:
		metrics.RecordSolveRejected("negative_points")
		return 0, model.SolveEvent{}, ErrValidation
	case durationSeconds < 0:
		metrics.RecordSolveRejected("negative_duration")
		return 0, model.SolveEvent{}, ErrValidation
	}

	st := l.stripeFor(playerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	log, ok := st.players[playerID]
	if !ok {
		log = &playerLog{solved: make(map[string]struct{})}
		st.players[playerID] = log
	}

	if _, seen := log.solved[challengeID]; seen {
		metrics.RecordSolveDuplicate()
		return StatusDuplicate, model.SolveEvent{}, nil
	}

	ev := model.SolveEvent{
		EventID:         uuid.NewString(),
		PlayerID:        playerID,
		ChallengeID:     challengeID,
		PointsAwarded:   pointsAwarded,
		SolvedAt:        solvedAt,
		DurationSeconds: durationSeconds,
	}
	log.events = append(log.events, ev)
	log.solved[challengeID] = struct{}{}
	log.version++

	metrics.RecordSolveAccepted()
	return StatusAccepted, ev, nil
}

// EventsFor returns a copy of the player's events in append order.
func (l *Ledger) EventsFor(ctx context.Context, playerID string) []model.SolveEvent {
	st := l.stripeFor(playerID)
	st.mu.RLock()
	defer st.mu.RUnlock()

	log, ok := st.players[playerID]
	if !ok {
		return nil
	}
	out := make([]model.SolveEvent, len(log.events))
	copy(out, log.events)
	return out
}

// SolvedSet returns a copy of the challenge ids the player has solved.
func (l *Ledger) SolvedSet(ctx context.Context, playerID string) map[string]struct{} {
	st := l.stripeFor(playerID)
	st.mu.RLock()
	defer st.mu.RUnlock()

	log, ok := st.players[playerID]
	if !ok {
		return map[string]struct{}{}
	}
	out := make(map[string]struct{}, len(log.solved))
	for id := range log.solved {
		out[id] = struct{}{}
	}
	return out
}

// HasSolved reports whether a solve event exists for the pair.
func (l *Ledger) HasSolved(ctx context.Context, playerID, challengeID string) bool {
	st := l.stripeFor(playerID)
	st.mu.RLock()
	defer st.mu.RUnlock()

	log, ok := st.players[playerID]
	if !ok {
		return false
	}
	_, seen := log.solved[challengeID]
	return seen
}

// VersionFor returns the player's ledger version: the number of accepted
// writes for that player. Zero for unknown players.
func (l *Ledger) VersionFor(ctx context.Context, playerID string) uint64 {
	st := l.stripeFor(playerID)
	st.mu.RLock()
	defer st.mu.RUnlock()

	log, ok := st.players[playerID]
	if !ok {
		return 0
	}
	return log.version
}

// PlayerCount returns the number of players with at least one event.
func (l *Ledger) PlayerCount(ctx context.Context) int {
	total := 0
	for i := range l.stripes {
		st := &l.stripes[i]
		st.mu.RLock()
		total += len(st.players)
		st.mu.RUnlock()
	}
	return total
}

// EventCount returns the total number of recorded events.
func (l *Ledger) EventCount(ctx context.Context) int {
	total := 0
	for i := range l.stripes {
		st := &l.stripes[i]
		st.mu.RLock()
		for _, log := range st.players {
			total += len(log.events)
		}
		st.mu.RUnlock()
	}
	return total
}
