package fermentation

import (
	"sort"
	"time"
)

// Stage is a discrete fermentation phase.
type Stage string

const (
	StageEarly          Stage = "early"
	StageMid            Stage = "mid"
	StageApproachingDry Stage = "approaching_dry"
	StageTerminal       Stage = "terminal"
	StageUnknown        Stage = "unknown"
)

// Method is how a logged gravity was obtained.
type Method string

const (
	MethodHydrometer    Method = "hydrometer"
	MethodRefractometer Method = "refractometer"
	MethodCalculated    Method = "calculated"
)

// Valid reports whether m is a known measurement method.
func (m Method) Valid() bool {
	switch m {
	case MethodHydrometer, MethodRefractometer, MethodCalculated:
		return true
	}
	return false
}

// Measurement is one logged (already corrected) gravity observation.
type Measurement struct {
	SpecificGravity float64   `json:"specificGravity"`
	MeasuredAt      time.Time `json:"measuredAt"`
	Method          Method    `json:"method"`
}

// History is a measurement sequence ordered newest first.
type History struct {
	items []Measurement
}

// NewHistory copies and orders measurements newest first, whatever order they arrive in.
func NewHistory(measurements []Measurement) History {
	items := make([]Measurement, len(measurements))
	copy(items, measurements)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].MeasuredAt.After(items[j].MeasuredAt)
	})
	return History{items: items}
}

// Len returns the number of measurements.
func (h History) Len() int {
	return len(h.items)
}

// At returns the i-th newest measurement.
func (h History) At(i int) Measurement {
	return h.items[i]
}

// Latest returns the newest measurement.
func (h History) Latest() (Measurement, bool) {
	if len(h.items) == 0 {
		return Measurement{}, false
	}
	return h.items[0], true
}

// Only keeps measurements taken with method, preserving order.
func (h History) Only(method Method) History {
	var out []Measurement
	for _, m := range h.items {
		if m.Method == method {
			out = append(out, m)
		}
	}
	return History{items: out}
}

// Measurements returns a copy of the ordered measurements.
func (h History) Measurements() []Measurement {
	out := make([]Measurement, len(h.items))
	copy(out, h.items)
	return out
}
