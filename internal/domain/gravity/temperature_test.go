package gravity

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ciderworks/pkg/errors"
)

func TestCorrectForTemperatureColdSampleReadsLower(t *testing.T) {
	got, err := CorrectForTemperature(1.050, 11, DefaultCalibrationTempC)
	require.NoError(t, err)
	require.Equal(t, 1.0494, got)
	require.InDelta(t, 1.0492, got, 0.0003)
}

func TestCorrectForTemperatureWarmSampleReadsHigher(t *testing.T) {
	got, err := CorrectForTemperature(1.040, 25, DefaultCalibrationTempC)
	require.NoError(t, err)
	require.Equal(t, 1.042, got)
}

func TestCorrectForTemperatureNoopAtCalibrationTemperature(t *testing.T) {
	for _, sg := range []float64{0.998, 1.01234567, 1.1} {
		got, err := CorrectForTemperature(sg, 20, 20)
		require.NoError(t, err)
		require.Equal(t, sg, got)

		got, err = CorrectForTemperature(sg, 20.005, 20)
		require.NoError(t, err)
		require.Equal(t, sg, got)
	}
}

func TestCorrectForTemperatureValidation(t *testing.T) {
	cases := []struct {
		name     string
		sg       float64
		sample   float64
		calib    float64
		sentinel error
	}{
		{name: "zero gravity", sg: 0, sample: 20, calib: 15.56, sentinel: ErrInvalidGravity},
		{name: "negative gravity", sg: -1.01, sample: 20, calib: 15.56, sentinel: ErrInvalidGravity},
		{name: "too cold", sg: 1.05, sample: -10.5, calib: 15.56, sentinel: ErrInvalidTemperature},
		{name: "too hot", sg: 1.05, sample: 100.1, calib: 15.56, sentinel: ErrInvalidTemperature},
		{name: "bad calibration", sg: 1.05, sample: 20, calib: 120, sentinel: ErrInvalidTemperature},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CorrectForTemperature(tc.sg, tc.sample, tc.calib)
			require.ErrorIs(t, err, tc.sentinel)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
		})
	}
}

func TestCorrectForTemperatureFahrenheitMatchesCelsius(t *testing.T) {
	for _, f := range []float64{35, 50, 60, 68, 77, 90, 150} {
		viaF, err := CorrectForTemperatureF(1.062, f, 60)
		require.NoError(t, err)
		viaC, err := CorrectForTemperature(1.062, FahrenheitToCelsius(f), FahrenheitToCelsius(60))
		require.NoError(t, err)
		require.InDelta(t, viaC, viaF, 1e-9, "temperature %v°F", f)
	}
}

func TestTemperatureConversionsRoundTrip(t *testing.T) {
	require.InDelta(t, 60.008, CelsiusToFahrenheit(DefaultCalibrationTempC), 1e-9)
	require.InDelta(t, 100.0, FahrenheitToCelsius(212), 1e-9)
	require.InDelta(t, 18.3, FahrenheitToCelsius(CelsiusToFahrenheit(18.3)), 1e-9)
}

func TestRequiresTemperatureCorrection(t *testing.T) {
	require.False(t, RequiresTemperatureCorrection(17, 15.56, 0))
	require.True(t, RequiresTemperatureCorrection(18, 15.56, 0))
	require.True(t, RequiresTemperatureCorrection(12, 15.56, DefaultCorrectionThresholdC))
	require.False(t, RequiresTemperatureCorrection(20, 15.56, 5))
}
