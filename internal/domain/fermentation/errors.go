package fermentation

import "errors"

var (
	// ErrGravityOrder indicates OG below current gravity or not above target gravity.
	ErrGravityOrder = errors.New("inconsistent gravity ordering")
	// ErrInvalidSettings indicates thresholds or stall settings outside their domain.
	ErrInvalidSettings = errors.New("invalid fermentation settings")
)
