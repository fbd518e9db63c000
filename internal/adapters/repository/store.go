// Package repository defines the leaderboard index interface and errors.
package repository

import (
	"context"
	"time"
)

// Entry represents a leaderboard row.
type Entry struct {
	Rank        int
	PlayerID    string
	TotalPoints int
	TieBreak    time.Time
}

// Store maintains the total order over players by
// (totalPoints desc, tieBreak asc, playerID asc).
type Store interface {
	// Upsert inserts or repositions one player's entry. tieBreak is the
	// instant the player last crossed their current point total; it is
	// used only for deterministic ordering, never displayed.
	Upsert(ctx context.Context, playerID string, totalPoints int, tieBreak time.Time) error

	// RankOf returns the player's entry with the 1-based global rank.
	// Returns ErrNotFound if the player has no recorded solve.
	RankOf(ctx context.Context, playerID string) (Entry, error)

	// Page returns an ordered slice of entries starting at offset, with
	// global ranks populated.
	Page(ctx context.Context, offset, limit int) ([]Entry, error)

	// Count returns the number of players on the leaderboard.
	Count(ctx context.Context) int
}
