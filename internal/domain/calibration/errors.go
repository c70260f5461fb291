package calibration

import "errors"

var (
	// ErrInsufficientData indicates fewer readings than model parameters.
	ErrInsufficientData = errors.New("insufficient calibration readings")
	// ErrSingularMatrix indicates collinear calibration data.
	ErrSingularMatrix = errors.New("singular normal-equations matrix")
	// ErrInvalidReading indicates a calibration reading outside its domain.
	ErrInvalidReading = errors.New("invalid calibration reading")
)
