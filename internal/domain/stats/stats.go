// Package stats derives per-player skill statistics from the solve ledger.
//
// Aggregation is a pure function of (events, catalog snapshot, now): safe
// to recompute repeatedly and concurrently for different players. The rank
// tier and global rank fields of the returned profile are left for the
// rank engine to fill in.
package stats

import (
	"sort"
	"time"

	"github.com/mightbeian/HacMan/internal/domain/model"
	"github.com/mightbeian/HacMan/internal/domain/types"
)

// Aggregation constants.
const (
	topAreaCount     = 2 // strength/weakness list length
	recentSolveCount = 3 // recent activity rows kept on the profile
	hoursPerDay      = 24
)

// CategoryUncategorized buckets solves whose challenge has left the
// catalog. Keeps the per-category solved sum equal to challengesSolved
// even across partial catalog replacement.
const CategoryUncategorized model.Category = "uncategorized"

// Aggregate computes a player's profile from their solve events and the
// current catalog snapshot. now anchors the streak calculation.
func Aggregate(playerID string, events []model.SolveEvent, snap CatalogSnapshot, now time.Time) types.PlayerProfile {
	profile := types.PlayerProfile{
		PlayerID:      playerID,
		CategoryStats: make(map[model.Category]types.CategoryStat),
		StrengthAreas: []model.Category{},
		WeaknessAreas: []model.Category{},
		RecentSolves:  []types.RecentSolve{},
	}

	totals := snap.TotalByCategory()
	solvedByCategory := make(map[model.Category]int)

	var durationSum int
	for _, ev := range events {
		profile.TotalPoints += ev.PointsAwarded
		profile.ChallengesSolved++
		durationSum += ev.DurationSeconds

		if profile.FastestSolveSeconds == 0 || ev.DurationSeconds < profile.FastestSolveSeconds {
			profile.FastestSolveSeconds = ev.DurationSeconds
		}
		if ev.DurationSeconds > profile.SlowestSolveSeconds {
			profile.SlowestSolveSeconds = ev.DurationSeconds
		}

		category := CategoryUncategorized
		if meta, ok := snap.Get(ev.ChallengeID); ok {
			category = meta.Category
		}
		solvedByCategory[category]++
	}

	if profile.ChallengesSolved > 0 {
		profile.AvgSolveTimeSeconds = float64(durationSum) / float64(profile.ChallengesSolved)
	}

	for category, total := range totals {
		profile.CategoryStats[category] = categoryStat(solvedByCategory[category], total)
	}
	for category, solved := range solvedByCategory {
		if _, ok := profile.CategoryStats[category]; !ok {
			profile.CategoryStats[category] = categoryStat(solved, 0)
		}
	}

	profile.StreakDays = streakDays(events, now)
	profile.StrengthAreas, profile.WeaknessAreas = rankAreas(profile.CategoryStats)
	profile.RecentSolves = recentSolves(events)

	return profile
}

// CatalogSnapshot is the slice of the catalog the aggregator needs.
type CatalogSnapshot interface {
	Get(id string) (model.ChallengeMeta, bool)
	TotalByCategory() map[model.Category]int
}

// categoryStat builds a stat with accuracy = solved/total clamped to [0,1].
// A category with no catalog challenges has accuracy 0 by convention.
func categoryStat(solved, total int) types.CategoryStat {
	stat := types.CategoryStat{Solved: solved, Total: total}
	if total > 0 {
		stat.Accuracy = float64(solved) / float64(total)
		if stat.Accuracy > 1 {
			stat.Accuracy = 1
		}
	}
	return stat
}

// streakDays counts consecutive calendar days with at least one solve,
// ending at today or yesterday. A streak live through yesterday is not yet
// broken by a miss today; a gap of two or more days resets the run.
func streakDays(events []model.SolveEvent, now time.Time) int {
	if len(events) == 0 {
		return 0
	}

	days := make(map[time.Time]struct{}, len(events))
	for _, ev := range events {
		days[dayOf(ev.SolvedAt)] = struct{}{}
	}

	cursor := dayOf(now)
	if _, ok := days[cursor]; !ok {
		cursor = cursor.Add(-hoursPerDay * time.Hour)
		if _, ok := days[cursor]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := days[cursor]; !ok {
			break
		}
		streak++
		cursor = cursor.Add(-hoursPerDay * time.Hour)
	}
	return streak
}

func dayOf(t time.Time) time.Time {
	return t.UTC().Truncate(hoursPerDay * time.Hour)
}

// rankAreas returns the top strength and weakness categories. Only
// categories where the player has solved something carry signal; ties
// break by solved count then category name for determinism.
func rankAreas(statsByCategory map[model.Category]types.CategoryStat) (strengths, weaknesses []model.Category) {
	played := make([]model.Category, 0, len(statsByCategory))
	for category, stat := range statsByCategory {
		if stat.Solved > 0 {
			played = append(played, category)
		}
	}

	byAccuracyDesc := make([]model.Category, len(played))
	copy(byAccuracyDesc, played)
	sort.Slice(byAccuracyDesc, func(i, j int) bool {
		a, b := statsByCategory[byAccuracyDesc[i]], statsByCategory[byAccuracyDesc[j]]
		if a.Accuracy != b.Accuracy {
			return a.Accuracy > b.Accuracy
		}
		if a.Solved != b.Solved {
			return a.Solved > b.Solved
		}
		return byAccuracyDesc[i] < byAccuracyDesc[j]
	})

	byAccuracyAsc := make([]model.Category, len(played))
	copy(byAccuracyAsc, played)
	sort.Slice(byAccuracyAsc, func(i, j int) bool {
		a, b := statsByCategory[byAccuracyAsc[i]], statsByCategory[byAccuracyAsc[j]]
		if a.Accuracy != b.Accuracy {
			return a.Accuracy < b.Accuracy
		}
		if a.Solved != b.Solved {
			return a.Solved < b.Solved
		}
		return byAccuracyAsc[i] < byAccuracyAsc[j]
	})

	return topOf(byAccuracyDesc), topOf(byAccuracyAsc)
}

func topOf(categories []model.Category) []model.Category {
	n := len(categories)
	if n > topAreaCount {
		n = topAreaCount
	}
	out := make([]model.Category, n)
	copy(out, categories[:n])
	return out
}

// recentSolves returns the newest solves, most recent first.
func recentSolves(events []model.SolveEvent) []types.RecentSolve {
	sorted := make([]model.SolveEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].SolvedAt.Equal(sorted[j].SolvedAt) {
			return sorted[i].SolvedAt.After(sorted[j].SolvedAt)
		}
		return sorted[i].ChallengeID < sorted[j].ChallengeID
	})

	n := len(sorted)
	if n > recentSolveCount {
		n = recentSolveCount
	}
	out := make([]types.RecentSolve, 0, n)
	for _, ev := range sorted[:n] {
		out = append(out, types.RecentSolve{
			ChallengeID:     ev.ChallengeID,
			Points:          ev.PointsAwarded,
			SolvedAt:        ev.SolvedAt,
			DurationSeconds: ev.DurationSeconds,
		})
	}
	return out
}
