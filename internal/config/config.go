// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Layer defaults -> optional file -> env in Load.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RefreshQueueSize bounds the in-memory profile refresh queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// WorkerCount sets the number of profile refresh workers.
	WorkerCount int `koanf:"worker_count"`

	// LedgerStripes sets the number of lock stripes in the solve ledger.
	LedgerStripes int `koanf:"ledger_stripes"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DefaultRecommendations is the recommendation list length when the
	// caller does not ask for a specific k.
	DefaultRecommendations int `koanf:"default_recommendations"`

	// MaxRecommendations caps the recommendation list length.
	MaxRecommendations int `koanf:"max_recommendations"`

	// WeightProficiencyGap and WeightDifficultySuitability blend the
	// recommendation scoring terms; they must sum to 1.
	WeightProficiencyGap        float64 `koanf:"weight_proficiency_gap"`
	WeightDifficultySuitability float64 `koanf:"weight_difficulty_suitability"`

	// RankThresholds maps tier names to their minimum point totals.
	RankThresholds map[string]int `koanf:"rank_thresholds"`

	// CatalogSourceURL enables the periodic pull refresher when non-empty.
	// Without it the catalog only changes via PUT /catalog pushes.
	CatalogSourceURL string `koanf:"catalog_source_url"`

	// CatalogRefreshIntervalS and CatalogFetchTimeoutS bound the pull
	// refresher against the external catalog store.
	CatalogRefreshIntervalS int `koanf:"catalog_refresh_interval_s"`
	CatalogFetchTimeoutS    int `koanf:"catalog_fetch_timeout_s"`

	// AuthSigningKey enables bearer-token player identification when
	// non-empty. The key is the HMAC secret shared with the identity
	// layer.
	AuthSigningKey string `koanf:"auth_signing_key"`
}

// New creates a Config with platform defaults.
func New() *Config {
	return &Config{
		LogLevel:                    "info",
		Addr:                        ":9080",
		RefreshQueueSize:            10_000,
		WorkerCount:                 runtime.NumCPU() * 2,
		LedgerStripes:               32,
		MaxLeaderboardLimit:         100,
		DefaultRecommendations:      3,
		MaxRecommendations:          10,
		WeightProficiencyGap:        0.6,
		WeightDifficultySuitability: 0.4,
		RankThresholds: map[string]int{
			"Newbie":     0,
			"Apprentice": 100,
			"Hacker":     500,
			"Expert":     1500,
			"Elite":      3000,
			"Legend":     5000,
		},
		CatalogRefreshIntervalS: 300,
		CatalogFetchTimeoutS:    10,
	}
}
