package fermentation

import (
	"math"

	"github.com/yanqian/ciderworks/internal/domain/gravity"
	"github.com/yanqian/ciderworks/pkg/util"
)

// StallCheck reports the comparison of the two newest measurements.
type StallCheck struct {
	Stalled       bool    `json:"stalled"`
	ElapsedDays   float64 `json:"elapsedDays"`
	GravityChange float64 `json:"gravityChange"`
}

// DetectStall flags a stall when the two newest measurements are at least
// MinDays apart and differ by less than SGThreshold. A terminal batch is
// expected to plateau and never counts as stalled.
func DetectStall(h History, s StallSettings, stage Stage) StallCheck {
	if !s.Enabled || stage == StageTerminal || h.Len() < 2 {
		return StallCheck{}
	}
	latest, previous := h.At(0), h.At(1)
	elapsed := util.DaysBetween(previous.MeasuredAt, latest.MeasuredAt)
	change := gravity.RoundSG(math.Abs(latest.SpecificGravity - previous.SpecificGravity))
	return StallCheck{
		Stalled:       elapsed >= s.MinDays && change < s.SGThreshold,
		ElapsedDays:   roundTo(elapsed, 2),
		GravityChange: change,
	}
}
