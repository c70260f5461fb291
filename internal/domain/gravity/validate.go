package gravity

import (
	"fmt"
	"math"

	apperrors "github.com/yanqian/ciderworks/pkg/errors"
)

const (
	// MinMeasurementSG and MaxMeasurementSG bound a logged fermentation measurement.
	MinMeasurementSG = 0.98
	MaxMeasurementSG = 1.2

	// MinTemperatureC and MaxTemperatureC bound a plausible liquid sample.
	MinTemperatureC = -10.0
	MaxTemperatureC = 100.0
)

// RoundSG rounds a specific gravity to 4 decimal places.
func RoundSG(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateGravity(name string, sg float64) error {
	if !isFinite(sg) || sg <= 0 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("%s must be a positive number, got %v", name, sg), ErrInvalidGravity)
	}
	return nil
}

func validateTemperature(name string, tempC float64) error {
	if !isFinite(tempC) || tempC < MinTemperatureC || tempC > MaxTemperatureC {
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("%s must be within [%.0f, %.0f] °C, got %v", name, MinTemperatureC, MaxTemperatureC, tempC), ErrInvalidTemperature)
	}
	return nil
}

// ValidateMeasurementSG checks that a logged measurement lies in [0.98, 1.2].
func ValidateMeasurementSG(sg float64) error {
	if !isFinite(sg) || sg < MinMeasurementSG || sg > MaxMeasurementSG {
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("specific gravity must be within [%.2f, %.1f], got %v", MinMeasurementSG, MaxMeasurementSG, sg), ErrInvalidGravity)
	}
	return nil
}
