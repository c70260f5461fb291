package schedule

import (
	"math"
	"time"

	"github.com/yanqian/ciderworks/pkg/util"
)

// Priority ranks how urgently a measurement is due. Empty means no signal.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityNone   Priority = ""
)

// TaskType classifies the task an alert should create.
type TaskType string

const (
	TaskMeasurementNeeded TaskType = "measurement_needed"
	TaskSensoryCheckDue   TaskType = "sensory_check_due"
	TaskCheckInDue        TaskType = "check_in_due"
)

// Status reports whether a batch needs a measurement now.
type Status struct {
	Needed      bool      `json:"needed"`
	Priority    Priority  `json:"priority,omitempty"`
	TaskType    TaskType  `json:"taskType"`
	DaysSince   util.Days `json:"daysSince"`
	DaysOverdue float64   `json:"daysOverdue"`
}

// IsMeasurementNeeded classifies the batch against its resolved schedule.
// lastMeasuredAt is nil when the batch was never measured.
func IsMeasurementNeeded(res Result, lastMeasuredAt *time.Time, now time.Time) Status {
	st := Status{TaskType: classifyTask(res.MeasurementTypes), DaysSince: util.Never()}
	if lastMeasuredAt == nil {
		st.Needed = true
		st.Priority = PriorityHigh
		return st
	}

	since := util.DaysBetween(*lastMeasuredAt, now)
	st.DaysSince = util.Days(math.Round(since*10) / 10)
	if res.IntervalDays.Infinite() {
		return st
	}

	maxDays := float64(res.IntervalDays.Max)
	overdue := since - maxDays
	switch {
	case overdue > maxDays:
		st.Needed = true
		st.Priority = PriorityHigh
	case overdue > 0:
		st.Needed = true
		st.Priority = PriorityMedium
	case since >= float64(res.IntervalDays.Min):
		st.Priority = PriorityLow
	}
	if overdue > 0 {
		st.DaysOverdue = math.Round(overdue*10) / 10
	}
	return st
}

func classifyTask(types []MeasurementType) TaskType {
	hasSG := false
	for _, t := range types {
		if t == MeasurementSensory {
			return TaskSensoryCheckDue
		}
		if t == MeasurementSG {
			hasSG = true
		}
	}
	if hasSG {
		return TaskMeasurementNeeded
	}
	return TaskCheckInDue
}
