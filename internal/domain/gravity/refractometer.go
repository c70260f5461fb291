package gravity

import "math"

// Coefficients is the fitted model corrected = A*refractometer + B*originalGravity + C.
type Coefficients struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

// Apply evaluates the model without rounding.
func (c Coefficients) Apply(refractometer, originalGravity float64) float64 {
	return c.A*refractometer + c.B*originalGravity + c.C
}

// CorrectRefractometerCalibrated applies instrument-specific coefficients to a raw
// refractometer reading after removing the baseline offset.
func CorrectRefractometerCalibrated(raw, originalGravity float64, coeffs Coefficients, baselineOffset float64) (float64, error) {
	if err := validateGravity("refractometer reading", raw); err != nil {
		return 0, err
	}
	if err := validateGravity("original gravity", originalGravity); err != nil {
		return 0, err
	}
	return RoundSG(coeffs.Apply(raw-baselineOffset, originalGravity)), nil
}

// CorrectRefractometerTerrill corrects a refractometer reading for alcohol using
// the cubic Terrill formula. Both gravities go through the linear Brix
// approximation first. A reading that falls below water once the baseline offset
// is removed is treated as 0 °Bx.
func CorrectRefractometerTerrill(raw, originalGravity, baselineOffset float64) (float64, error) {
	if err := validateGravity("refractometer reading", raw); err != nil {
		return 0, err
	}
	if err := validateGravity("original gravity", originalGravity); err != nil {
		return 0, err
	}
	ob := RefractometerBrix(originalGravity)
	fb := math.Max(RefractometerBrix(raw-baselineOffset), 0)
	if err := validateBrix("original brix", ob); err != nil {
		return 0, err
	}
	if err := validateBrix("refractometer brix", fb); err != nil {
		return 0, err
	}
	fg := 1.0 -
		0.0044993*ob +
		0.011774*fb +
		0.00027581*ob*ob -
		0.0012717*fb*fb -
		0.0000072800*ob*ob*ob +
		0.000063293*fb*fb*fb
	return RoundSG(fg), nil
}
