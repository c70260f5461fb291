package gravity

import (
	"fmt"
	"math"

	apperrors "github.com/yanqian/ciderworks/pkg/errors"
)

const (
	MinBrix = 0.0
	MaxBrix = 50.0

	// refractometerBrixPerSG is the linear approximation used by the Terrill formula.
	refractometerBrixPerSG = 250.0
)

func validateBrix(name string, brix float64) error {
	if !isFinite(brix) || brix < MinBrix || brix > MaxBrix {
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("%s must be within [%.0f, %.0f] °Bx, got %.2f", name, MinBrix, MaxBrix, brix), ErrInvalidBrix)
	}
	return nil
}

// BrixToSG converts degrees Brix to specific gravity, rounded to 4 decimals.
func BrixToSG(brix float64) (float64, error) {
	if err := validateBrix("brix", brix); err != nil {
		return 0, err
	}
	return RoundSG(1 + brix/(258.6-(brix/258.2)*227.1)), nil
}

// SGToBrix converts specific gravity to degrees Brix, rounded to 2 decimals.
func SGToBrix(sg float64) (float64, error) {
	if err := validateGravity("specific gravity", sg); err != nil {
		return 0, err
	}
	brix := ((182.4601*sg-775.6821)*sg+1262.7794)*sg - 669.5622
	brix = math.Round(brix*100) / 100
	if err := validateBrix("brix", brix); err != nil {
		return 0, err
	}
	return brix, nil
}

// RefractometerBrix is the linear (sg-1)*250 conversion used with the Terrill formula.
func RefractometerBrix(sg float64) float64 {
	return (sg - 1) * refractometerBrixPerSG
}
