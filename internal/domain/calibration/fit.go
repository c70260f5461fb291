package calibration

import (
	"fmt"
	"math"

	"github.com/yanqian/ciderworks/internal/domain/gravity"
	apperrors "github.com/yanqian/ciderworks/pkg/errors"
)

// MinReadings is the number of parameters in the correction model.
const MinReadings = 3

// Reading is one paired lab observation.
type Reading struct {
	OriginalGravity      float64 `json:"originalGravity"`
	RefractometerReading float64 `json:"refractometerReading"`
	HydrometerReading    float64 `json:"hydrometerReading"`
	TemperatureC         float64 `json:"temperatureC"`
	IsFreshJuice         bool    `json:"isFreshJuice,omitempty"`
}

// Prediction compares the corrected hydrometer value with the model output.
type Prediction struct {
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
	Error     float64 `json:"error"`
}

// Result is the outcome of a fit.
type Result struct {
	Coefficients gravity.Coefficients `json:"coefficients"`
	RSquared     float64              `json:"rSquared"`
	MaxError     float64              `json:"maxError"`
	AvgError     float64              `json:"avgError"`
	Predictions  []Prediction         `json:"predictions"`
}

// Fit estimates corrected = a*refractometer + b*OG + c by ordinary least squares.
// Hydrometer readings are first corrected from their sample temperature to
// hydrometerCalibrationTempC (gravity.DefaultCalibrationTempC when zero).
func Fit(readings []Reading, hydrometerCalibrationTempC float64) (Result, error) {
	if len(readings) < MinReadings {
		return Result{}, apperrors.Wrap(apperrors.CodeInsufficientData, fmt.Sprintf("at least %d calibration readings are required, got %d", MinReadings, len(readings)), ErrInsufficientData)
	}
	targets, err := correctedHydrometer(readings, hydrometerCalibrationTempC)
	if err != nil {
		return Result{}, err
	}

	var s sums
	for i, r := range readings {
		s.add(r.RefractometerReading, r.OriginalGravity, targets[i])
	}
	solution, err := solveLinearSystem(s.normalMatrix(), s.normalVector())
	if err != nil {
		return Result{}, err
	}
	coeffs := gravity.Coefficients{
		A: gravity.RoundSG(solution[0]),
		B: gravity.RoundSG(solution[1]),
		C: gravity.RoundSG(solution[2]),
	}

	return evaluate(coeffs, readings, targets), nil
}

// BaselineOffset is the mean refractometer over-read on fresh juice, where no
// alcohol is present yet. It is zero when no fresh-juice readings exist.
func BaselineOffset(readings []Reading, hydrometerCalibrationTempC float64) (float64, error) {
	var fresh []Reading
	for _, r := range readings {
		if r.IsFreshJuice {
			fresh = append(fresh, r)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	targets, err := correctedHydrometer(fresh, hydrometerCalibrationTempC)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for i, r := range fresh {
		total += r.RefractometerReading - targets[i]
	}
	return gravity.RoundSG(total / float64(len(fresh))), nil
}

func correctedHydrometer(readings []Reading, calibrationTempC float64) ([]float64, error) {
	if calibrationTempC == 0 {
		calibrationTempC = gravity.DefaultCalibrationTempC
	}
	out := make([]float64, len(readings))
	for i, r := range readings {
		if !positive(r.OriginalGravity) || !positive(r.RefractometerReading) {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("reading %d: gravities must be positive", i+1), ErrInvalidReading)
		}
		corrected, err := gravity.CorrectForTemperature(r.HydrometerReading, r.TemperatureC, calibrationTempC)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("reading %d", i+1), err)
		}
		out[i] = corrected
	}
	return out, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func evaluate(coeffs gravity.Coefficients, readings []Reading, targets []float64) Result {
	n := float64(len(readings))
	mean := 0.0
	for _, y := range targets {
		mean += y
	}
	mean /= n

	var ssRes, ssTot, maxErr, sumErr float64
	predictions := make([]Prediction, len(readings))
	for i, r := range readings {
		predicted := coeffs.Apply(r.RefractometerReading, r.OriginalGravity)
		residual := targets[i] - predicted
		ssRes += residual * residual
		ssTot += (targets[i] - mean) * (targets[i] - mean)
		abs := math.Abs(residual)
		sumErr += abs
		maxErr = math.Max(maxErr, abs)
		predictions[i] = Prediction{
			Actual:    gravity.RoundSG(targets[i]),
			Predicted: gravity.RoundSG(predicted),
			Error:     gravity.RoundSG(abs),
		}
	}

	rSquared := 1.0
	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
	}
	return Result{
		Coefficients: coeffs,
		RSquared:     gravity.RoundSG(rSquared),
		MaxError:     gravity.RoundSG(maxErr),
		AvgError:     gravity.RoundSG(sumErr / n),
		Predictions:  predictions,
	}
}

// sums accumulates the terms of the normal equations for y = a*x1 + b*x2 + c.
type sums struct {
	x1x1, x1x2, x2x2 float64
	x1, x2           float64
	x1y, x2y, y      float64
	n                float64
}

func (s *sums) add(x1, x2, y float64) {
	s.x1x1 += x1 * x1
	s.x1x2 += x1 * x2
	s.x2x2 += x2 * x2
	s.x1 += x1
	s.x2 += x2
	s.x1y += x1 * y
	s.x2y += x2 * y
	s.y += y
	s.n++
}

func (s *sums) normalMatrix() [][]float64 {
	return [][]float64{
		{s.x1x1, s.x1x2, s.x1},
		{s.x1x2, s.x2x2, s.x2},
		{s.x1, s.x2, s.n},
	}
}

func (s *sums) normalVector() []float64 {
	return []float64{s.x1y, s.x2y, s.y}
}
