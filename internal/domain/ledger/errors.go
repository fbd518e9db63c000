package ledger

import "errors"

// Sentinel kinds for ledger errors.
var (
	ErrValidation = errors.New("invalid solve event")
)
