package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yanqian/ciderworks/internal/domain/fermentation"
	apperrors "github.com/yanqian/ciderworks/pkg/errors"
	"github.com/yanqian/ciderworks/pkg/util"
)

// ErrInvalidOverride indicates a batch override that cannot be applied.
var ErrInvalidOverride = errors.New("invalid schedule override")

// Request selects the schedule for one batch.
type Request struct {
	ProductType ProductType
	// Stage drives the interval for SG-driven products; empty means unknown.
	Stage    fermentation.Stage
	Override *Override
	// Initial selects the initial measurement set instead of the ongoing one.
	Initial bool
}

// Interval is a day window. Both ends are infinite when nothing is scheduled.
type Interval struct {
	Min util.Days `json:"min"`
	Max util.Days `json:"max"`
}

// Infinite reports whether no measurement is ever scheduled.
func (i Interval) Infinite() bool {
	return i.Max.IsNever()
}

// Result is the resolved schedule for a batch.
type Result struct {
	ProductType            ProductType       `json:"productType"`
	MeasurementTypes       []MeasurementType `json:"measurementTypes"`
	IntervalDays           Interval          `json:"intervalDays"`
	AlertType              *AlertType        `json:"alertType"`
	Description            string            `json:"description"`
	UsesFermentationStages bool              `json:"usesFermentationStages"`
	PrimaryMeasurement     MeasurementType   `json:"primaryMeasurement"`
	Notes                  string            `json:"notes,omitempty"`
}

// ProductSchedule resolves the schedule for a batch. A per-batch override wins
// over configs, which win over DefaultPolicies.
func ProductSchedule(req Request, configs Policies) (Result, error) {
	policy, err := resolvePolicy(req.ProductType, configs)
	if err != nil {
		return Result{}, err
	}

	types := policy.OngoingMeasurements
	if req.Initial && len(policy.InitialMeasurements) > 0 {
		types = policy.InitialMeasurements
	}

	interval := Interval{Min: util.Never(), Max: util.Never()}
	switch {
	case policy.DefaultIntervalDays != nil:
		days := util.Days(*policy.DefaultIntervalDays)
		interval = Interval{Min: days, Max: days}
	case policy.StageDriven():
		stage := req.Stage
		if stage == "" {
			stage = fermentation.StageUnknown
		}
		w := fermentation.RecommendedFrequency(stage)
		interval = Interval{Min: util.Days(w.MinDays), Max: util.Days(w.MaxDays)}
	}

	alert := policy.AlertType
	notes := ""
	if o := req.Override; o != nil {
		if o.IntervalDays != nil {
			if *o.IntervalDays <= 0 {
				return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "override interval must be positive", ErrInvalidOverride)
			}
			days := util.Days(*o.IntervalDays)
			interval = Interval{Min: days, Max: days}
		}
		if len(o.MeasurementTypes) > 0 {
			types = o.MeasurementTypes
		}
		if o.AlertType != nil {
			alert = o.AlertType
		}
		notes = o.Notes
	}

	res := Result{
		ProductType:            req.ProductType,
		MeasurementTypes:       append([]MeasurementType(nil), types...),
		IntervalDays:           interval,
		AlertType:              alert,
		UsesFermentationStages: policy.StageDriven(),
		PrimaryMeasurement:     policy.PrimaryMeasurement,
		Notes:                  notes,
	}
	res.Description = describe(res, req.Stage)
	return res, nil
}

// resolvePolicy layers a configured policy over the built-in default field by field.
func resolvePolicy(pt ProductType, configs Policies) (Policy, error) {
	policy, ok := DefaultPolicies()[pt]
	if !ok {
		return Policy{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("no schedule for product type %q", pt), ErrUnknownProductType)
	}
	cfg, ok := configs[pt]
	if !ok {
		return policy, nil
	}
	if len(cfg.InitialMeasurements) > 0 {
		policy.InitialMeasurements = cfg.InitialMeasurements
	}
	if len(cfg.OngoingMeasurements) > 0 {
		policy.OngoingMeasurements = cfg.OngoingMeasurements
	}
	if cfg.PrimaryMeasurement != "" {
		policy.PrimaryMeasurement = cfg.PrimaryMeasurement
	}
	if cfg.UsesFermentationStages != nil {
		policy.UsesFermentationStages = cfg.UsesFermentationStages
	}
	if cfg.DefaultIntervalDays != nil {
		policy.DefaultIntervalDays = cfg.DefaultIntervalDays
	}
	if cfg.AlertType != nil {
		policy.AlertType = cfg.AlertType
	}
	return policy, nil
}

func describe(res Result, stage fermentation.Stage) string {
	what := joinLabels(res.MeasurementTypes)
	switch {
	case len(res.MeasurementTypes) == 0:
		return "No measurements scheduled"
	case res.IntervalDays.Infinite():
		return fmt.Sprintf("One-off %s check (no ongoing tracking)", what)
	case res.IntervalDays.Min != res.IntervalDays.Max:
		desc := fmt.Sprintf("%s check every %g-%g days", capitalize(what), float64(res.IntervalDays.Min), float64(res.IntervalDays.Max))
		if res.UsesFermentationStages && stage != "" {
			desc += fmt.Sprintf(" (%s stage)", strings.ReplaceAll(string(stage), "_", " "))
		}
		return desc
	}
	days := float64(res.IntervalDays.Max)
	return fmt.Sprintf("%s %s check (every %g %s)", cadence(days), what, days, pluralDays(days))
}

func cadence(days float64) string {
	switch {
	case days == 1:
		return "Daily"
	case days == 7:
		return "Weekly"
	case days == 14:
		return "Fortnightly"
	case days >= 28 && days <= 31:
		return "Monthly"
	case days >= 84 && days <= 92:
		return "Quarterly"
	case days >= 365 && days <= 366:
		return "Annual"
	}
	return "Periodic"
}

func pluralDays(days float64) string {
	if days == 1 {
		return "day"
	}
	return "days"
}

// joinLabels renders "a", "a & b", "a, b & c".
func joinLabels(types []MeasurementType) string {
	labels := make([]string, 0, len(types))
	for _, t := range types {
		label, ok := measurementLabels[t]
		if !ok {
			label = strings.ReplaceAll(string(t), "_", " ")
		}
		labels = append(labels, label)
	}
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	}
	return strings.Join(labels[:len(labels)-1], ", ") + " & " + labels[len(labels)-1]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
