package fermentation

import (
	"fmt"
	"math"

	"github.com/yanqian/ciderworks/internal/domain/gravity"
	apperrors "github.com/yanqian/ciderworks/pkg/errors"
)

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// PercentFermented returns (OG-current)/(OG-target)*100 rounded to 1 decimal.
// Non-fermenting or misconfigured input (OG <= current, OG <= target) yields 0
// instead of an error so progress displays never go negative.
func PercentFermented(og, current, target float64) float64 {
	if !finite(og, current, target) || og <= current || og <= target {
		return 0
	}
	return roundTo((og-current)/(og-target)*100, 1)
}

// StrictPercentFermented is PercentFermented for callers that require a
// consistent ordering: it fails when OG < current or OG <= target.
func StrictPercentFermented(og, current, target float64) (float64, error) {
	for _, sg := range []float64{og, current, target} {
		if err := gravity.ValidateMeasurementSG(sg); err != nil {
			return 0, err
		}
	}
	if og < current {
		return 0, apperrors.Wrap(apperrors.CodeDomainInconsistency, fmt.Sprintf("original gravity %.4f is below current gravity %.4f", og, current), ErrGravityOrder)
	}
	if og <= target {
		return 0, apperrors.Wrap(apperrors.CodeDomainInconsistency, fmt.Sprintf("original gravity %.4f must be above target gravity %.4f", og, target), ErrGravityOrder)
	}
	return roundTo((og-current)/(og-target)*100, 1), nil
}

// DetermineStage maps percent fermented onto a stage.
func DetermineStage(percent float64, t StageThresholds) Stage {
	switch {
	case math.IsNaN(percent) || percent < 0:
		return StageUnknown
	case percent < t.EarlyMax:
		return StageEarly
	case percent < t.MidMax:
		return StageMid
	case percent < t.ApproachingDryMax:
		return StageApproachingDry
	default:
		return StageTerminal
	}
}

// FrequencyWindow is the recommended number of days between measurements.
type FrequencyWindow struct {
	MinDays int `json:"minDays"`
	MaxDays int `json:"maxDays"`
}

// RecommendedFrequency returns the measurement window for a stage.
func RecommendedFrequency(stage Stage) FrequencyWindow {
	switch stage {
	case StageEarly:
		return FrequencyWindow{MinDays: 1, MaxDays: 2}
	case StageMid:
		return FrequencyWindow{MinDays: 2, MaxDays: 3}
	case StageApproachingDry:
		return FrequencyWindow{MinDays: 3, MaxDays: 4}
	case StageTerminal:
		return FrequencyWindow{MinDays: 7, MaxDays: 14}
	default:
		return FrequencyWindow{MinDays: 1, MaxDays: 3}
	}
}
