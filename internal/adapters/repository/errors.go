package repository

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrNotFound    = errors.New("player not found")
	ErrInvalidPage = errors.New("invalid leaderboard page")
)
