package recommend

import "errors"

// Sentinel kinds for recommendation errors.
var (
	ErrInvalidConfig = errors.New("invalid recommendation config")
)
