package gravity

import "math"

const (
	// DefaultCalibrationTempC is the usual hydrometer calibration temperature (60 °F).
	DefaultCalibrationTempC = 15.56
	// DefaultCorrectionThresholdC is the deviation below which a UI may hide the correction.
	DefaultCorrectionThresholdC = 2.0

	noopToleranceC = 0.01
)

// waterDensityFactor is the relative density of water at tempF. The polynomial
// coefficients are published for the Fahrenheit scale.
func waterDensityFactor(tempF float64) float64 {
	return 1.00130346 -
		1.34722124e-4*tempF +
		2.04052596e-6*tempF*tempF -
		2.32820948e-9*tempF*tempF*tempF
}

// CelsiusToFahrenheit converts °C to °F.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// FahrenheitToCelsius converts °F to °C.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// CorrectForTemperature adjusts a hydrometer reading taken at sampleTempC to the
// instrument's calibration temperature. The result is rounded to 4 decimals; a
// sample already at calibration temperature is returned unchanged.
func CorrectForTemperature(sg, sampleTempC, calibrationTempC float64) (float64, error) {
	if err := validateGravity("specific gravity", sg); err != nil {
		return 0, err
	}
	if err := validateTemperature("sample temperature", sampleTempC); err != nil {
		return 0, err
	}
	if err := validateTemperature("calibration temperature", calibrationTempC); err != nil {
		return 0, err
	}
	if math.Abs(sampleTempC-calibrationTempC) < noopToleranceC {
		return sg, nil
	}
	sample := waterDensityFactor(CelsiusToFahrenheit(sampleTempC))
	calibration := waterDensityFactor(CelsiusToFahrenheit(calibrationTempC))
	return RoundSG(sg * sample / calibration), nil
}

// CorrectForTemperatureF is CorrectForTemperature with both temperatures in °F.
func CorrectForTemperatureF(sg, sampleTempF, calibrationTempF float64) (float64, error) {
	return CorrectForTemperature(sg, FahrenheitToCelsius(sampleTempF), FahrenheitToCelsius(calibrationTempF))
}

// RequiresTemperatureCorrection reports whether the sample deviates from the
// calibration temperature by more than thresholdC. A non-positive threshold
// falls back to DefaultCorrectionThresholdC.
func RequiresTemperatureCorrection(sampleTempC, calibrationTempC, thresholdC float64) bool {
	if thresholdC <= 0 {
		thresholdC = DefaultCorrectionThresholdC
	}
	return math.Abs(sampleTempC-calibrationTempC) > thresholdC
}
