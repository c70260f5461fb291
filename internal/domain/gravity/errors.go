package gravity

import "errors"

var (
	// ErrInvalidGravity indicates a non-finite, non-positive or out-of-range specific gravity.
	ErrInvalidGravity = errors.New("invalid specific gravity")
	// ErrInvalidTemperature indicates a temperature outside the liquid sample range.
	ErrInvalidTemperature = errors.New("invalid temperature")
	// ErrInvalidBrix indicates a Brix value outside [0, 50].
	ErrInvalidBrix = errors.New("invalid brix")
	// ErrUnknownInstrument indicates an instrument type other than hydrometer or refractometer.
	ErrUnknownInstrument = errors.New("unknown instrument type")
)
