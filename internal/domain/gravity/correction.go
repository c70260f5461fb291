package gravity

import (
	"fmt"

	apperrors "github.com/yanqian/ciderworks/pkg/errors"
)

// InstrumentType identifies the instrument a raw reading came from.
type InstrumentType string

const (
	InstrumentHydrometer    InstrumentType = "hydrometer"
	InstrumentRefractometer InstrumentType = "refractometer"
)

// Valid reports whether t is a supported instrument.
func (t InstrumentType) Valid() bool {
	return t == InstrumentHydrometer || t == InstrumentRefractometer
}

// Strategy tags which correction path produced a result.
type Strategy string

const (
	// StrategyTemperature is the hydrometer temperature correction.
	StrategyTemperature Strategy = "temperature"
	// StrategyBaselineOnly applies only the refractometer zero offset (fresh juice).
	StrategyBaselineOnly Strategy = "baseline_only"
	// StrategyCalibrated applies fitted instrument coefficients.
	StrategyCalibrated Strategy = "calibrated"
	// StrategyTerrill applies the Terrill formula because no coefficients exist.
	StrategyTerrill Strategy = "terrill"
	// StrategyUncorrected means no correction was possible.
	StrategyUncorrected Strategy = "uncorrected"
)

// Calibration bundles the stored per-instrument calibration data.
type Calibration struct {
	Coefficients                *Coefficients `json:"coefficients,omitempty"`
	RefractometerBaselineOffset float64       `json:"refractometerBaselineOffset"`
	// HydrometerCalibrationTempC defaults to DefaultCalibrationTempC when zero.
	HydrometerCalibrationTempC float64 `json:"hydrometerCalibrationTempC,omitempty"`
}

// HydrometerTempC returns the calibration temperature, falling back to the default.
func (c *Calibration) HydrometerTempC() float64 {
	if c == nil || c.HydrometerCalibrationTempC == 0 {
		return DefaultCalibrationTempC
	}
	return c.HydrometerCalibrationTempC
}

func (c *Calibration) baselineOffset() float64 {
	if c == nil {
		return 0
	}
	return c.RefractometerBaselineOffset
}

// CorrectionInput is one correction request.
type CorrectionInput struct {
	InstrumentType  InstrumentType `json:"instrumentType"`
	RawReading      float64        `json:"rawReading"`
	TemperatureC    *float64       `json:"temperatureC,omitempty"`
	OriginalGravity *float64       `json:"originalGravity,omitempty"`
	IsFreshJuice    bool           `json:"isFreshJuice,omitempty"`
	Calibration     *Calibration   `json:"calibration,omitempty"`
}

// Breakdown lists the correction components that were applied, each as a signed SG delta.
type Breakdown struct {
	Temperature *float64 `json:"temp,omitempty"`
	Baseline    *float64 `json:"baseline,omitempty"`
	Alcohol     *float64 `json:"alcohol,omitempty"`
}

// Total sums the present components.
func (b Breakdown) Total() float64 {
	total := 0.0
	for _, part := range []*float64{b.Temperature, b.Baseline, b.Alcohol} {
		if part != nil {
			total += *part
		}
	}
	return total
}

// Empty reports whether no component was applied.
func (b Breakdown) Empty() bool {
	return b.Temperature == nil && b.Baseline == nil && b.Alcohol == nil
}

// CorrectionResult is one correction outcome.
type CorrectionResult struct {
	CorrectedSG float64   `json:"correctedSG"`
	RawReading  float64   `json:"rawReading"`
	Strategy    Strategy  `json:"strategy"`
	Corrections Breakdown `json:"corrections"`
}

// ApplySGCorrection routes a raw reading through the matching correction pipeline.
func ApplySGCorrection(in CorrectionInput) (CorrectionResult, error) {
	if err := validateGravity("raw reading", in.RawReading); err != nil {
		return CorrectionResult{}, err
	}
	if in.OriginalGravity != nil {
		if err := validateGravity("original gravity", *in.OriginalGravity); err != nil {
			return CorrectionResult{}, err
		}
	}

	switch in.InstrumentType {
	case InstrumentHydrometer:
		return correctHydrometer(in)
	case InstrumentRefractometer:
		return correctRefractometer(in)
	default:
		return CorrectionResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("instrument type %q is not supported", in.InstrumentType), ErrUnknownInstrument)
	}
}

func correctHydrometer(in CorrectionInput) (CorrectionResult, error) {
	if in.TemperatureC == nil {
		return CorrectionResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "hydrometer readings require a sample temperature", ErrInvalidTemperature)
	}
	corrected, err := CorrectForTemperature(in.RawReading, *in.TemperatureC, in.Calibration.HydrometerTempC())
	if err != nil {
		return CorrectionResult{}, err
	}
	res := CorrectionResult{CorrectedSG: corrected, RawReading: in.RawReading, Strategy: StrategyTemperature}
	if delta := RoundSG(corrected - in.RawReading); delta != 0 {
		res.Corrections.Temperature = &delta
	}
	return res, nil
}

func correctRefractometer(in CorrectionInput) (CorrectionResult, error) {
	offset := in.Calibration.baselineOffset()
	res := CorrectionResult{RawReading: in.RawReading}
	if offset != 0 {
		baseline := RoundSG(-offset)
		res.Corrections.Baseline = &baseline
	}

	switch {
	case in.IsFreshJuice:
		res.Strategy = StrategyBaselineOnly
		res.CorrectedSG = RoundSG(in.RawReading - offset)
		return res, nil
	case in.OriginalGravity == nil:
		return CorrectionResult{CorrectedSG: in.RawReading, RawReading: in.RawReading, Strategy: StrategyUncorrected}, nil
	case in.Calibration != nil && in.Calibration.Coefficients != nil:
		corrected, err := CorrectRefractometerCalibrated(in.RawReading, *in.OriginalGravity, *in.Calibration.Coefficients, offset)
		if err != nil {
			return CorrectionResult{}, err
		}
		res.Strategy = StrategyCalibrated
		res.CorrectedSG = corrected
	default:
		corrected, err := CorrectRefractometerTerrill(in.RawReading, *in.OriginalGravity, offset)
		if err != nil {
			return CorrectionResult{}, err
		}
		res.Strategy = StrategyTerrill
		res.CorrectedSG = corrected
	}

	alcohol := RoundSG(res.CorrectedSG - (in.RawReading - offset))
	res.Corrections.Alcohol = &alcohol
	return res, nil
}
