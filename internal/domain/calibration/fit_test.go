package calibration

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ciderworks/internal/domain/gravity"
	apperrors "github.com/yanqian/ciderworks/pkg/errors"
)

var (
	sampleRefractometer = []float64{1.010, 1.015, 1.020, 1.025, 1.030, 1.012, 1.028, 1.018}
	sampleOriginal      = []float64{1.045, 1.060, 1.050, 1.065, 1.055, 1.062, 1.048, 1.058}
)

func syntheticReadings(a, b, c, noise float64) []Reading {
	readings := make([]Reading, len(sampleRefractometer))
	for i := range sampleRefractometer {
		jitter := noise
		if i%2 == 1 {
			jitter = -noise
		}
		readings[i] = Reading{
			OriginalGravity:      sampleOriginal[i],
			RefractometerReading: sampleRefractometer[i],
			HydrometerReading:    a*sampleRefractometer[i] + b*sampleOriginal[i] + c + jitter,
			TemperatureC:         gravity.DefaultCalibrationTempC,
		}
	}
	return readings
}

func TestFitRecoversExactCoefficients(t *testing.T) {
	res, err := Fit(syntheticReadings(0.9, -0.1, 0.2, 0), 0)
	require.NoError(t, err)
	require.InDelta(t, 0.9, res.Coefficients.A, 1e-4)
	require.InDelta(t, -0.1, res.Coefficients.B, 1e-4)
	require.InDelta(t, 0.2, res.Coefficients.C, 1e-4)
	require.Greater(t, res.RSquared, 0.99)
	require.LessOrEqual(t, res.RSquared, 1.0)
	require.Len(t, res.Predictions, len(sampleRefractometer))
	require.Less(t, res.MaxError, 0.0002)
}

func TestFitWithNoiseKeepsQuality(t *testing.T) {
	res, err := Fit(syntheticReadings(0.9, -0.1, 0.2, 0.0003), 0)
	require.NoError(t, err)
	require.Greater(t, res.RSquared, 0.9)
	require.InDelta(t, 0.9, res.Coefficients.A, 0.05)
	require.InDelta(t, -0.1, res.Coefficients.B, 0.06)
	require.InDelta(t, 0.2, res.Coefficients.C, 0.06)
	require.Less(t, res.MaxError, 0.001)
	require.LessOrEqual(t, res.AvgError, res.MaxError)
	for _, p := range res.Predictions {
		require.GreaterOrEqual(t, p.Error, 0.0)
		require.InDelta(t, p.Error, absDiff(p.Actual, p.Predicted), 0.00011)
	}
}

func TestFitCorrectsHydrometerTemperature(t *testing.T) {
	readings := syntheticReadings(0.9, -0.1, 0.2, 0)
	for i := range readings {
		readings[i].HydrometerReading = gravity.RoundSG(readings[i].HydrometerReading)
		readings[i].TemperatureC = 20
	}
	res, err := Fit(readings, 20)
	require.NoError(t, err)
	for i, p := range res.Predictions {
		require.Equal(t, readings[i].HydrometerReading, p.Actual)
	}

	atDefault, err := Fit(readings, 0)
	require.NoError(t, err)
	require.NotEqual(t, res.Predictions[0].Actual, atDefault.Predictions[0].Actual)
}

func TestFitRequiresThreeReadings(t *testing.T) {
	_, err := Fit(syntheticReadings(0.9, -0.1, 0.2, 0)[:2], 0)
	require.ErrorIs(t, err, ErrInsufficientData)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInsufficientData))

	_, err = Fit(nil, 0)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestFitCollinearDataIsSingular(t *testing.T) {
	readings := syntheticReadings(0.9, -0.1, 0.2, 0)
	for i := range readings {
		readings[i].OriginalGravity = 1.050
	}
	_, err := Fit(readings, 0)
	require.ErrorIs(t, err, ErrSingularMatrix)
}

func TestFitRejectsInvalidReadings(t *testing.T) {
	readings := syntheticReadings(0.9, -0.1, 0.2, 0)
	readings[1].OriginalGravity = 0
	_, err := Fit(readings, 0)
	require.ErrorIs(t, err, ErrInvalidReading)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	readings = syntheticReadings(0.9, -0.1, 0.2, 0)
	readings[2].TemperatureC = 140
	_, err = Fit(readings, 0)
	require.ErrorIs(t, err, gravity.ErrInvalidTemperature)
}

func TestFitConstantTargetsHasPerfectRSquared(t *testing.T) {
	readings := []Reading{
		{OriginalGravity: 1.050, RefractometerReading: 1.010, HydrometerReading: 1.000, TemperatureC: gravity.DefaultCalibrationTempC},
		{OriginalGravity: 1.060, RefractometerReading: 1.020, HydrometerReading: 1.000, TemperatureC: gravity.DefaultCalibrationTempC},
		{OriginalGravity: 1.055, RefractometerReading: 1.030, HydrometerReading: 1.000, TemperatureC: gravity.DefaultCalibrationTempC},
	}
	res, err := Fit(readings, 0)
	require.NoError(t, err)
	require.Equal(t, 1.0, res.RSquared)
}

func TestBaselineOffset(t *testing.T) {
	readings := []Reading{
		{OriginalGravity: 1.050, RefractometerReading: 1.052, HydrometerReading: 1.050, TemperatureC: gravity.DefaultCalibrationTempC, IsFreshJuice: true},
		{OriginalGravity: 1.060, RefractometerReading: 1.063, HydrometerReading: 1.060, TemperatureC: gravity.DefaultCalibrationTempC, IsFreshJuice: true},
		{OriginalGravity: 1.060, RefractometerReading: 1.030, HydrometerReading: 1.004, TemperatureC: gravity.DefaultCalibrationTempC},
	}
	offset, err := BaselineOffset(readings, 0)
	require.NoError(t, err)
	require.Equal(t, 0.0025, offset)

	offset, err = BaselineOffset(readings[2:], 0)
	require.NoError(t, err)
	require.Zero(t, offset)
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
