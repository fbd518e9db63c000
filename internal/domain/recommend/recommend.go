// Package recommend scores unsolved catalog challenges for a player.
//
// The confidence score is a deterministic, explainable heuristic blending
// a proficiency gap with a difficulty suitability term; it is not a
// statistical probability. Results are views over the ledger and catalog,
// cached per player and keyed by (ledger version, catalog version).
package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mightbeian/HacMan/internal/domain/model"
	"github.com/mightbeian/HacMan/internal/domain/types"
	"github.com/mightbeian/HacMan/pkg/metrics"
)

// Scoring constants.
const (
	neutralGap = 0.5 // prior for categories with zero attempts

	suitabilityStretch = 1.0 // one difficulty step above demonstrated level
	suitabilitySame    = 0.6 // at demonstrated level
	suitabilityPoor    = 0.2 // below, or two or more steps above

	accuracyHardFloor   = 0.75 // accuracy demonstrating hard-level proficiency
	accuracyMediumFloor = 0.4  // accuracy demonstrating medium-level proficiency
)

// Reason templates. The template is keyed by which scoring term drove the
// candidate to the top.
const (
	reasonSkills       = "Based on your %s skills"
	reasonFundamentals = "Build %s fundamentals"
	reasonStrengthen   = "Strengthen your %s knowledge"
)

// Weights blends the scoring terms; they must sum to 1.
type Weights struct {
	ProficiencyGap        float64 `koanf:"proficiency_gap"`
	DifficultySuitability float64 `koanf:"difficulty_suitability"`
}

// DefaultWeights returns the standard 0.6/0.4 blend.
func DefaultWeights() Weights {
	return Weights{ProficiencyGap: 0.6, DifficultySuitability: 0.4}
}

// DefaultTimeTable returns the estimated time range per difficulty band.
func DefaultTimeTable() map[model.Difficulty]types.TimeRange {
	return map[model.Difficulty]types.TimeRange{
		model.DifficultyEasy:   {LowMinutes: 10, HighMinutes: 20},
		model.DifficultyMedium: {LowMinutes: 25, HighMinutes: 40},
		model.DifficultyHard:   {LowMinutes: 45, HighMinutes: 90},
	}
}

// CatalogSnapshot is the slice of the catalog the engine needs.
type CatalogSnapshot interface {
	Version() uint64
	All() []model.ChallengeMeta
}

// Engine computes and caches per-player recommendations.
type Engine struct {
	weights   Weights
	timeTable map[model.Difficulty]types.TimeRange
	defaultK  int
	maxK      int

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// cacheEntry pins the versions the cached list was computed against.
type cacheEntry struct {
	ledgerVersion  uint64
	catalogVersion uint64
	recs           []types.Recommendation
}

// NewEngine creates a recommendation engine with configuration options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		weights:   DefaultWeights(),
		timeTable: DefaultTimeTable(),
		defaultK:  defaultTopK,
		maxK:      defaultMaxK,
		cache:     make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := validateWeights(e.weights); err != nil {
		return nil, err
	}
	if e.defaultK < 1 || e.maxK < e.defaultK {
		return nil, fmt.Errorf("%w: k bounds %d/%d", ErrInvalidConfig, e.defaultK, e.maxK)
	}
	return e, nil
}

func validateWeights(w Weights) error {
	if w.ProficiencyGap < 0 || w.DifficultySuitability < 0 {
		return fmt.Errorf("%w: negative weight", ErrInvalidConfig)
	}
	sum := w.ProficiencyGap + w.DifficultySuitability
	if sum < 1-weightSumTolerance || sum > 1+weightSumTolerance {
		return fmt.Errorf("%w: weights must sum to 1, got %.3f", ErrInvalidConfig, sum)
	}
	return nil
}

// DefaultK returns the configured default list length.
func (e *Engine) DefaultK() int { return e.defaultK }

// MaxK returns the configured list length cap.
func (e *Engine) MaxK() int { return e.maxK }

// Recommend returns up to k recommendations for the player, serving from
// the per-player cache when the ledger and catalog versions still match.
func (e *Engine) Recommend(ctx context.Context, profile types.PlayerProfile, solved map[string]struct{}, snap CatalogSnapshot, ledgerVersion uint64, k int) []types.Recommendation {
	if k < 1 || k > e.maxK {
		k = e.defaultK
	}

	e.mu.Lock()
	entry, ok := e.cache[profile.PlayerID]
	e.mu.Unlock()
	if ok && entry.ledgerVersion == ledgerVersion && entry.catalogVersion == snap.Version() {
		metrics.RecordRecommendationCacheHit()
		return clip(entry.recs, k)
	}
	metrics.RecordRecommendationCacheMiss()

	recs := e.compute(profile, solved, snap)
	e.mu.Lock()
	e.cache[profile.PlayerID] = cacheEntry{
		ledgerVersion:  ledgerVersion,
		catalogVersion: snap.Version(),
		recs:           recs,
	}
	e.mu.Unlock()

	return clip(recs, k)
}

// Invalidate drops the cached list for a player.
func (e *Engine) Invalidate(playerID string) {
	e.mu.Lock()
	delete(e.cache, playerID)
	e.mu.Unlock()
}

// compute scores every unsolved catalog challenge and returns the top maxK
// in deterministic order.
func (e *Engine) compute(profile types.PlayerProfile, solved map[string]struct{}, snap CatalogSnapshot) []types.Recommendation {
	start := time.Now()
	defer func() {
		metrics.RecordRecommendationLatency(float64(time.Since(start).Milliseconds()))
	}()

	type scored struct {
		rec        types.Recommendation
		basePoints int
	}

	out := make([]scored, 0)
	for _, meta := range snap.All() {
		if _, done := solved[meta.ID]; done {
			continue
		}

		stat, attempted := profile.CategoryStats[meta.Category]
		hasAttempts := attempted && stat.Solved > 0

		gap := neutralGap
		if hasAttempts {
			gap = 1 - stat.Accuracy
		}

		suitability := e.suitabilityFor(meta.Difficulty, stat, hasAttempts)
		confidence := clamp01(e.weights.ProficiencyGap*gap + e.weights.DifficultySuitability*suitability)

		out = append(out, scored{
			rec: types.Recommendation{
				ChallengeID:   meta.ID,
				Title:         meta.Title,
				Category:      meta.Category,
				Difficulty:    meta.Difficulty,
				BasePoints:    meta.BasePoints,
				Reason:        e.reasonFor(meta.Category, hasAttempts, gap, suitability),
				Confidence:    confidence,
				EstimatedTime: e.timeRangeFor(meta.Difficulty),
			},
			basePoints: meta.BasePoints,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].rec.Confidence != out[j].rec.Confidence {
			return out[i].rec.Confidence > out[j].rec.Confidence
		}
		if out[i].basePoints != out[j].basePoints {
			return out[i].basePoints > out[j].basePoints
		}
		return out[i].rec.ChallengeID < out[j].rec.ChallengeID
	})

	n := len(out)
	if n > e.maxK {
		n = e.maxK
	}
	recs := make([]types.Recommendation, n)
	for i := 0; i < n; i++ {
		recs[i] = out[i].rec
	}
	return recs
}

// suitabilityFor encodes the stretch-but-achievable heuristic: one step
// above the demonstrated level scores highest, the same level moderately,
// anything below or two-plus steps above lowest.
func (e *Engine) suitabilityFor(difficulty model.Difficulty, stat types.CategoryStat, hasAttempts bool) float64 {
	demonstrated := 0
	if hasAttempts {
		switch {
		case stat.Accuracy >= accuracyHardFloor:
			demonstrated = model.DifficultyHard.Level()
		case stat.Accuracy >= accuracyMediumFloor:
			demonstrated = model.DifficultyMedium.Level()
		default:
			demonstrated = model.DifficultyEasy.Level()
		}
	}

	switch difficulty.Level() - demonstrated {
	case 1:
		return suitabilityStretch
	case 0:
		return suitabilitySame
	default:
		return suitabilityPoor
	}
}

// reasonFor picks the explanation template for the dominating term.
func (e *Engine) reasonFor(category model.Category, hasAttempts bool, gap, suitability float64) string {
	if !hasAttempts {
		return fmt.Sprintf(reasonFundamentals, category)
	}
	if e.weights.ProficiencyGap*gap >= e.weights.DifficultySuitability*suitability {
		return fmt.Sprintf(reasonSkills, category)
	}
	return fmt.Sprintf(reasonStrengthen, category)
}

func (e *Engine) timeRangeFor(difficulty model.Difficulty) types.TimeRange {
	if tr, ok := e.timeTable[difficulty]; ok {
		return tr
	}
	return types.TimeRange{LowMinutes: defaultLowMinutes, HighMinutes: defaultHighMinutes}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func clip(recs []types.Recommendation, k int) []types.Recommendation {
	if len(recs) > k {
		recs = recs[:k]
	}
	out := make([]types.Recommendation, len(recs))
	copy(out, recs)
	return out
}
