package fermentation

import "time"

// TerminalCheck reports whether terminal gravity is confirmed.
type TerminalCheck struct {
	Confirmed          bool    `json:"confirmed"`
	HydrometerReadings int     `json:"hydrometerReadings"`
	SeparationHours    float64 `json:"separationHours"`
}

// ConfirmTerminal confirms terminal gravity when the two newest hydrometer
// readings are identical and at least minSeparation apart. Refractometer and
// calculated values are ignored because their correction error makes equal
// readings weak evidence. A non-positive minSeparation uses DefaultTerminalConfirmation.
func ConfirmTerminal(h History, minSeparation time.Duration) TerminalCheck {
	if minSeparation <= 0 {
		minSeparation = DefaultTerminalConfirmation
	}
	hydrometer := h.Only(MethodHydrometer)
	check := TerminalCheck{HydrometerReadings: hydrometer.Len()}
	if hydrometer.Len() < 2 {
		return check
	}
	latest, previous := hydrometer.At(0), hydrometer.At(1)
	separation := latest.MeasuredAt.Sub(previous.MeasuredAt)
	check.SeparationHours = roundTo(separation.Hours(), 1)
	check.Confirmed = latest.SpecificGravity == previous.SpecificGravity && separation >= minSeparation
	return check
}
