package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrUnknownChallenge = errors.New("unknown challenge")
	ErrInvalidSnapshot  = errors.New("invalid catalog snapshot")
)
