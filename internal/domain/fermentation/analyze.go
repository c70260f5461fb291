package fermentation

import (
	"fmt"
	"math"
	"time"

	"github.com/yanqian/ciderworks/pkg/util"
)

// ActionRecordGravities is recommended when OG, current SG or target FG is missing.
const ActionRecordGravities = "Record original gravity, current gravity and target final gravity to track fermentation progress."

// AnalysisInput is the batch data Analyze works from. CurrentGravity defaults to
// the newest measurement when nil.
type AnalysisInput struct {
	OriginalGravity *float64
	CurrentGravity  *float64
	TargetGravity   *float64
	Measurements    []Measurement
}

// Progress is derived on demand from the measurement history and never stored.
type Progress struct {
	PercentFermented         float64         `json:"percentFermented"`
	Stage                    Stage           `json:"stage"`
	IsStalled                bool            `json:"isStalled"`
	IsTerminalConfirmed      bool            `json:"isTerminalConfirmed"`
	DaysSinceLastMeasurement util.Days       `json:"daysSinceLastMeasurement"`
	RecommendedFrequency     FrequencyWindow `json:"recommendedFrequency"`
	RecommendedAction        string          `json:"recommendedAction"`
	NextMeasurementDue       time.Time       `json:"nextMeasurementDue"`
	Stall                    StallCheck      `json:"stall"`
	Terminal                 TerminalCheck   `json:"terminal"`
}

// Analyze derives the full progress picture for a batch at time now.
func Analyze(in AnalysisInput, settings Settings, now time.Time) Progress {
	history := NewHistory(in.Measurements)
	latest, hasLatest := history.Latest()

	daysSince := util.Never()
	if hasLatest {
		daysSince = util.Days(roundTo(util.DaysBetween(latest.MeasuredAt, now), 1))
	}
	current := in.CurrentGravity
	if current == nil && hasLatest {
		sg := latest.SpecificGravity
		current = &sg
	}

	if in.OriginalGravity == nil || current == nil || in.TargetGravity == nil {
		return Progress{
			Stage:                    StageUnknown,
			DaysSinceLastMeasurement: daysSince,
			RecommendedFrequency:     RecommendedFrequency(StageUnknown),
			RecommendedAction:        ActionRecordGravities,
			NextMeasurementDue:       now,
		}
	}

	percent := PercentFermented(*in.OriginalGravity, *current, *in.TargetGravity)
	stage := DetermineStage(percent, settings.Thresholds)
	stall := DetectStall(history, settings.Stall, stage)
	terminal := ConfirmTerminal(history, settings.TerminalConfirmation)
	window := RecommendedFrequency(stage)

	due := now
	if hasLatest {
		due = latest.MeasuredAt.Add(time.Duration(window.MaxDays) * 24 * time.Hour)
	}

	progress := Progress{
		PercentFermented:         percent,
		Stage:                    stage,
		IsStalled:                stall.Stalled,
		IsTerminalConfirmed:      terminal.Confirmed,
		DaysSinceLastMeasurement: daysSince,
		RecommendedFrequency:     window,
		NextMeasurementDue:       due,
		Stall:                    stall,
		Terminal:                 terminal,
	}
	progress.RecommendedAction = recommendAction(progress, settings, hasLatest, now)
	return progress
}

// recommendAction picks one message by priority: stalled, unconfirmed terminal,
// overdue, then time until the next reading.
func recommendAction(p Progress, settings Settings, hasMeasurements bool, now time.Time) string {
	switch {
	case p.IsStalled:
		return fmt.Sprintf("Fermentation may be stalled: gravity changed %.4f over %.1f days. Check temperature and yeast health.", p.Stall.GravityChange, p.Stall.ElapsedDays)
	case p.Stage == StageTerminal && !p.IsTerminalConfirmed:
		window := settings.TerminalConfirmation
		if window <= 0 {
			window = DefaultTerminalConfirmation
		}
		return fmt.Sprintf("Gravity looks terminal. Take another hydrometer reading at least %s after the last one to confirm.", pluralize(int(math.Round(window.Hours())), "hour"))
	case !hasMeasurements:
		return "No measurements recorded yet. Take a reading now."
	case float64(p.DaysSinceLastMeasurement) > float64(p.RecommendedFrequency.MaxDays):
		overdue := float64(p.DaysSinceLastMeasurement) - float64(p.RecommendedFrequency.MaxDays)
		return fmt.Sprintf("Measurement overdue by %s. Take a reading now.", pluralize(int(math.Ceil(overdue)), "day"))
	default:
		remaining := int(math.Ceil(util.DaysBetween(now, p.NextMeasurementDue)))
		if remaining <= 0 {
			return "Next measurement due today."
		}
		return fmt.Sprintf("Next measurement due in %s.", pluralize(remaining, "day"))
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
