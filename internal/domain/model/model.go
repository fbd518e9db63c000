// Package model contains domain facts passed between layers.
package model

import "time"

// Category identifies a challenge category. The catalog may introduce new
// categories at any time, so the core treats this as an open set.
type Category string

// Categories known to the platform today.
const (
	CategoryWeb       Category = "web"
	CategoryCrypto    Category = "crypto"
	CategoryForensics Category = "forensics"
	CategoryStego     Category = "stego"
	CategoryBinary    Category = "binary"
)

// Difficulty is the challenge difficulty band.
type Difficulty string

// Difficulty bands in ascending order.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Level returns the ordinal position of the difficulty band:
// easy=1, medium=2, hard=3. Unknown difficulties map to 0.
func (d Difficulty) Level() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 0
	}
}

// SolveEvent is the immutable record that a player completed a challenge.
// Created once per genuine first solve; never edited or deleted.
type SolveEvent struct {
	EventID         string    // unique id assigned by the ledger
	PlayerID        string    // verified player identifier
	ChallengeID     string    // catalog challenge identifier
	PointsAwarded   int       // points granted for the solve, >= 0
	SolvedAt        time.Time // server-assigned solve timestamp
	DurationSeconds int       // time the player spent on the challenge, >= 0
}

// ChallengeMeta is read-only catalog metadata for a single challenge.
type ChallengeMeta struct {
	ID         string
	Title      string
	Category   Category
	Difficulty Difficulty
	BasePoints int
}
