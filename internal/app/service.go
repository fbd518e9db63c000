// Package service provides the core progression service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	refreshqueue "github.com/mightbeian/HacMan/internal/adapters/mq/queue"
	workerpool "github.com/mightbeian/HacMan/internal/adapters/mq/worker"
	repository "github.com/mightbeian/HacMan/internal/adapters/repository"
	"github.com/mightbeian/HacMan/internal/catalog"
	"github.com/mightbeian/HacMan/internal/domain/ledger"
	"github.com/mightbeian/HacMan/internal/domain/model"
	"github.com/mightbeian/HacMan/internal/domain/rank"
	"github.com/mightbeian/HacMan/internal/domain/recommend"
	"github.com/mightbeian/HacMan/internal/domain/stats"
	"github.com/mightbeian/HacMan/internal/domain/types"
	"github.com/mightbeian/HacMan/pkg/logger"
	"github.com/mightbeian/HacMan/pkg/metrics"
)

// Service implements the API dependencies for the progression system.
//
// The solve ledger is the single authoritative state; profiles, the
// leaderboard index and recommendations are derived views over it. The
// write path records the event synchronously and hands cache warming to
// the worker pool, so reads arriving right after a solve still compute
// correct results lazily.
type Service struct {
	mu sync.RWMutex

	// Core components
	solveLedger  *ledger.Ledger
	catalogStore *catalog.Store
	refresher    *catalog.Refresher
	rankTable    *rank.Table
	recommender  *recommend.Engine
	leaderboard  repository.Store
	refreshQueue refreshqueue.Queue
	workerPool   *workerpool.Pool

	// Configuration
	workerCount         int
	queueSize           int
	ledgerStripes       int
	maxLeaderboardLimit int
	rankThresholds      map[string]int
	weights             recommend.Weights
	defaultK            int
	maxK                int
	catalogSource       catalog.Source
	catalogInterval     time.Duration
	catalogTimeout      time.Duration

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of profile refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the profile refresh queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLedgerStripes sets the number of lock stripes in the solve ledger.
func WithLedgerStripes(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.ledgerStripes = n
		}
	}
}

// WithMaxLeaderboardLimit caps the leaderboard page size.
func WithMaxLeaderboardLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLeaderboardLimit = limit
		}
	}
}

// WithRankThresholds sets the tier threshold table from configuration.
func WithRankThresholds(thresholds map[string]int) Option {
	return func(s *Service) {
		if len(thresholds) > 0 {
			s.rankThresholds = thresholds
		}
	}
}

// WithRecommendationWeights sets the recommendation scoring blend.
func WithRecommendationWeights(weights recommend.Weights) Option {
	return func(s *Service) {
		s.weights = weights
	}
}

// WithRecommendationK sets the default and maximum recommendation counts.
func WithRecommendationK(defaultK, maxK int) Option {
	return func(s *Service) {
		if defaultK > 0 && maxK >= defaultK {
			s.defaultK = defaultK
			s.maxK = maxK
		}
	}
}

// WithCatalogSource enables the periodic pull refresher against the
// external catalog store. Without a source the catalog only changes via
// RefreshCatalog pushes.
func WithCatalogSource(source catalog.Source) Option {
	return func(s *Service) {
		s.catalogSource = source
	}
}

// WithCatalogRefreshInterval sets the pull refresher interval.
func WithCatalogRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.catalogInterval = interval
		}
	}
}

// WithCatalogFetchTimeout bounds a single catalog fetch.
func WithCatalogFetchTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.catalogTimeout = timeout
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:         runtime.NumCPU() * 2,
		queueSize:           10_000,
		ledgerStripes:       32,
		maxLeaderboardLimit: 100,
		rankThresholds:      nil, // rank.DefaultThresholds applies
		weights:             recommend.DefaultWeights(),
		defaultK:            3,
		maxK:                10,
		catalogInterval:     5 * time.Minute,
		catalogTimeout:      10 * time.Second,
		logger:              nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting progression service...")

	var err error
	if s.rankThresholds != nil {
		s.rankTable, err = rank.NewTableFromMap(s.rankThresholds)
	} else {
		s.rankTable, err = rank.NewTable(rank.DefaultThresholds())
	}
	if err != nil {
		return fmt.Errorf("rank table: %w", err)
	}

	s.recommender, err = recommend.NewEngine(
		recommend.WithWeights(s.weights),
		recommend.WithDefaultK(s.defaultK),
		recommend.WithMaxK(s.maxK),
	)
	if err != nil {
		return fmt.Errorf("recommendation engine: %w", err)
	}

	s.solveLedger = ledger.New(
		ledger.WithStripeCount(s.ledgerStripes),
	)
	s.catalogStore = catalog.NewStore()
	s.leaderboard = repository.NewTreapStore(ctx)
	s.refreshQueue = refreshqueue.NewInMemoryQueue(
		refreshqueue.WithCapacity(s.queueSize),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.refreshQueue, s)
	s.workerPool.Start(ctx)

	if s.catalogSource != nil {
		s.refresher = catalog.NewRefresher(s.catalogStore, s.catalogSource,
			catalog.WithInterval(s.catalogInterval),
			catalog.WithFetchTimeout(s.catalogTimeout),
		)
		s.refresher.Start(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "progression service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("ledgerStripes", s.ledgerStripes),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping progression service...")

	if s.refresher != nil {
		s.refresher.Stop()
	}
	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	if s.refreshQueue != nil {
		_ = s.refreshQueue.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "progression service stopped")
}

// SubmitSolve records a first solve of a challenge by a player and
// returns the refreshed profile. A resubmission for an already-solved
// challenge is a defined no-op returning SolveDuplicate with the
// unchanged profile; no state is mutated and no points accrue.
func (s *Service) SubmitSolve(ctx context.Context, playerID, challengeID string, durationSeconds int) (types.SolveStatus, types.PlayerProfile, error) {
	meta, ok := s.catalogStore.Get(challengeID)
	if !ok {
		metrics.RecordSolveRejected("unknown_challenge")
		return "", types.PlayerProfile{}, fmt.Errorf("%w: %s", catalog.ErrUnknownChallenge, challengeID)
	}

	solvedAt := time.Now().UTC()
	status, ev, err := s.solveLedger.Record(ctx, playerID, challengeID, meta.BasePoints, solvedAt, durationSeconds)
	if err != nil {
		return "", types.PlayerProfile{}, err
	}

	if status == ledger.StatusDuplicate {
		profile := s.profileFor(ctx, playerID)
		return types.SolveDuplicate, profile, nil
	}

	profile := s.profileFor(ctx, playerID)

	// The tie-break instant is when the player reached their current
	// total, i.e. the accepted event's timestamp. Earlier arrival at the
	// same total ranks higher.
	start := time.Now()
	if err := s.leaderboard.Upsert(ctx, playerID, profile.TotalPoints, ev.SolvedAt); err != nil {
		return "", types.PlayerProfile{}, fmt.Errorf("leaderboard upsert: %w", err)
	}
	metrics.RecordLeaderboardUpsert()
	metrics.RecordLeaderboardUpsertLatency(float64(time.Since(start).Milliseconds()))
	metrics.UpdateLeaderboardPlayers(s.leaderboard.Count(ctx))

	profile.GlobalRank = s.globalRankOf(ctx, playerID)

	s.recommender.Invalidate(playerID)
	if !s.refreshQueue.Enqueue(ctx, refreshqueue.Job{PlayerID: playerID}) {
		// Best effort; the lazy read path recomputes on demand.
		s.logger.Debug(ctx, "refresh queue full, skipping cache warm",
			logger.String("playerID", playerID),
		)
	}

	return types.SolveAccepted, profile, nil
}

// GetProfile returns the player's derived progression profile. A player
// with no recorded solves gets a well-formed zero-value profile at the
// lowest tier rather than an error.
func (s *Service) GetProfile(ctx context.Context, playerID string) (types.PlayerProfile, error) {
	return s.profileFor(ctx, playerID), nil
}

// GetLeaderboardPage returns one page of the global leaderboard ordered
// by (points desc, earlier tie-break first). Offsets past the end yield
// an empty page.
func (s *Service) GetLeaderboardPage(ctx context.Context, offset, limit int) ([]types.LeaderboardEntry, error) {
	if limit < 1 || limit > s.maxLeaderboardLimit {
		return nil, fmt.Errorf("%w: limit %d outside [1,%d]", repository.ErrInvalidPage, limit, s.maxLeaderboardLimit)
	}

	start := time.Now()
	entries, err := s.leaderboard.Page(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	metrics.RecordLeaderboardQueryLatency(float64(time.Since(start).Milliseconds()))

	out := make([]types.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, types.LeaderboardEntry{
			GlobalRank:  e.Rank,
			PlayerID:    e.PlayerID,
			TotalPoints: e.TotalPoints,
		})
	}
	return out, nil
}

// GetRecommendations returns up to k scored challenge suggestions for the
// player. Solved challenges are never recommended; a player who has
// solved the whole catalog gets an empty list.
func (s *Service) GetRecommendations(ctx context.Context, playerID string, k int) ([]types.Recommendation, error) {
	profile := s.profileFor(ctx, playerID)
	solved := s.solveLedger.SolvedSet(ctx, playerID)
	snap := s.catalogStore.Snapshot()
	version := s.solveLedger.VersionFor(ctx, playerID)

	return s.recommender.Recommend(ctx, profile, solved, snap, version, k), nil
}

// RefreshCatalog replaces the challenge snapshot with a pushed one.
func (s *Service) RefreshCatalog(ctx context.Context, metas []model.ChallengeMeta) error {
	return s.catalogStore.Refresh(ctx, metas)
}

// CatalogDegraded reports whether the catalog is serving a stale snapshot.
func (s *Service) CatalogDegraded() bool {
	return s.catalogStore.Degraded()
}

// RefreshPlayer recomputes a player's derived state and warms the
// recommendation cache. Called by the worker pool; safe to run
// repeatedly and out of order.
func (s *Service) RefreshPlayer(ctx context.Context, playerID string) error {
	events := s.solveLedger.EventsFor(ctx, playerID)
	if len(events) == 0 {
		return nil
	}

	profile := s.profileFor(ctx, playerID)

	latest := events[0].SolvedAt
	for _, ev := range events[1:] {
		if ev.SolvedAt.After(latest) {
			latest = ev.SolvedAt
		}
	}
	if err := s.leaderboard.Upsert(ctx, playerID, profile.TotalPoints, latest); err != nil {
		return fmt.Errorf("leaderboard upsert: %w", err)
	}

	solved := s.solveLedger.SolvedSet(ctx, playerID)
	snap := s.catalogStore.Snapshot()
	version := s.solveLedger.VersionFor(ctx, playerID)
	s.recommender.Recommend(ctx, profile, solved, snap, version, s.recommender.DefaultK())
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	out := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		queueLen := s.refreshQueue.Len(ctx)
		out["queueLength"] = queueLen
		out["totalPlayers"] = s.leaderboard.Count(ctx)
		out["totalEvents"] = s.solveLedger.EventCount(ctx)
		out["catalogChallenges"] = s.catalogStore.Snapshot().Count()
		out["catalogDegraded"] = s.catalogStore.Degraded()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateLeaderboardPlayers(s.leaderboard.Count(ctx))
	}

	return out
}

// MaxLeaderboardLimit returns the configured page size cap.
func (s *Service) MaxLeaderboardLimit() int {
	return s.maxLeaderboardLimit
}

// profileFor derives the player's profile from the ledger and catalog,
// then fills in the rank tier and global rank.
func (s *Service) profileFor(ctx context.Context, playerID string) types.PlayerProfile {
	start := time.Now()

	events := s.solveLedger.EventsFor(ctx, playerID)
	snap := s.catalogStore.Snapshot()
	profile := stats.Aggregate(playerID, events, snap, time.Now())
	profile.RankTier = s.rankTable.TierFor(profile.TotalPoints)
	profile.GlobalRank = s.globalRankOf(ctx, playerID)

	metrics.RecordProfileRecomputeLatency(float64(time.Since(start).Milliseconds()))
	return profile
}

// globalRankOf returns the 1-based leaderboard rank, or 0 when the
// player has no leaderboard entry yet.
func (s *Service) globalRankOf(ctx context.Context, playerID string) int {
	entry, err := s.leaderboard.RankOf(ctx, playerID)
	if err != nil {
		return 0
	}
	return entry.Rank
}
