// Package types contains common read shapes used across the application
package types

import (
	"time"

	"github.com/mightbeian/HacMan/internal/domain/model"
)

// SolveStatus is the outcome of a solve submission.
type SolveStatus string

// Solve submission outcomes. Duplicate is a defined idempotent outcome,
// not an error.
const (
	SolveAccepted  SolveStatus = "accepted"
	SolveDuplicate SolveStatus = "duplicate"
)

// CategoryStat summarizes a player's performance in one category.
type CategoryStat struct {
	Solved   int     `json:"solved"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// RecentSolve is one row of a player's recent activity.
type RecentSolve struct {
	ChallengeID     string    `json:"challenge_id"`
	Points          int       `json:"points"`
	SolvedAt        time.Time `json:"solved_at"`
	DurationSeconds int       `json:"duration_seconds"`
}

// PlayerProfile is the derived view of a player's progression. It is a
// pure function of the solve ledger plus the catalog snapshot and is never
// stored as authoritative state.
type PlayerProfile struct {
	PlayerID            string                          `json:"player_id"`
	TotalPoints         int                             `json:"total_points"`
	ChallengesSolved    int                             `json:"challenges_solved"`
	CategoryStats       map[model.Category]CategoryStat `json:"category_stats"`
	RankTier            string                          `json:"rank_tier"`
	GlobalRank          int                             `json:"global_rank"`
	StreakDays          int                             `json:"streak_days"`
	AvgSolveTimeSeconds float64                         `json:"avg_solve_time_seconds"`
	FastestSolveSeconds int                             `json:"fastest_solve_seconds"`
	SlowestSolveSeconds int                             `json:"slowest_solve_seconds"`
	StrengthAreas       []model.Category                `json:"strength_areas"`
	WeaknessAreas       []model.Category                `json:"weakness_areas"`
	RecentSolves        []RecentSolve                   `json:"recent_solves"`
}

// LeaderboardEntry represents one row of the global leaderboard.
type LeaderboardEntry struct {
	GlobalRank  int    `json:"global_rank"`
	PlayerID    string `json:"player_id"`
	TotalPoints int    `json:"total_points"`
}

// TimeRange is an estimated duration window in minutes, Low <= High.
type TimeRange struct {
	LowMinutes  int `json:"low_minutes"`
	HighMinutes int `json:"high_minutes"`
}

// Recommendation is a scored suggestion for the next challenge to attempt.
// Confidence is a deterministic heuristic in [0,1], not a probability.
type Recommendation struct {
	ChallengeID   string           `json:"challenge_id"`
	Title         string           `json:"title"`
	Category      model.Category   `json:"category"`
	Difficulty    model.Difficulty `json:"difficulty"`
	BasePoints    int              `json:"base_points"`
	Reason        string           `json:"reason"`
	Confidence    float64          `json:"confidence"`
	EstimatedTime TimeRange        `json:"estimated_time"`
}
