package schedule

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/yanqian/ciderworks/pkg/errors"
)

// ErrUnknownProductType indicates a product type without a schedule policy.
var ErrUnknownProductType = errors.New("unknown product type")

// ProductType is the kind of beverage a batch produces.
type ProductType string

const (
	ProductCider   ProductType = "cider"
	ProductPerry   ProductType = "perry"
	ProductBrandy  ProductType = "brandy"
	ProductPommeau ProductType = "pommeau"
	ProductJuice   ProductType = "juice"
)

// ParseProductType normalizes and validates a product type.
func ParseProductType(raw string) (ProductType, error) {
	pt := ProductType(strings.ToLower(strings.TrimSpace(raw)))
	switch pt {
	case ProductCider, ProductPerry, ProductBrandy, ProductPommeau, ProductJuice:
		return pt, nil
	}
	return "", apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("product type %q is not supported", raw), ErrUnknownProductType)
}

// MeasurementType is something an operator measures on a batch.
type MeasurementType string

const (
	MeasurementSG          MeasurementType = "specific_gravity"
	MeasurementPH          MeasurementType = "ph"
	MeasurementTemperature MeasurementType = "temperature"
	MeasurementSensory     MeasurementType = "sensory"
	MeasurementVolume      MeasurementType = "volume"
	MeasurementABV         MeasurementType = "abv"
)

var measurementLabels = map[MeasurementType]string{
	MeasurementSG:          "specific gravity",
	MeasurementPH:          "pH",
	MeasurementTemperature: "temperature",
	MeasurementSensory:     "sensory",
	MeasurementVolume:      "volume",
	MeasurementABV:         "ABV",
}

// AlertType is the kind of reminder raised when a measurement is due.
type AlertType string

const (
	AlertMeasurementOverdue AlertType = "measurement_overdue"
	AlertCheckInReminder    AlertType = "check_in_reminder"
)

// Policy is the per product-type measurement policy.
type Policy struct {
	InitialMeasurements    []MeasurementType `json:"initialMeasurements" yaml:"initialMeasurements"`
	OngoingMeasurements    []MeasurementType `json:"ongoingMeasurements" yaml:"ongoingMeasurements"`
	PrimaryMeasurement     MeasurementType   `json:"primaryMeasurement" yaml:"primaryMeasurement"`
	// UsesFermentationStages is nil when unset; only stage-driven products derive
	// their interval from the fermentation stage.
	UsesFermentationStages *bool `json:"usesFermentationStages,omitempty" yaml:"usesFermentationStages,omitempty"`
	// DefaultIntervalDays is nil when the product has no fixed cadence.
	DefaultIntervalDays *int `json:"defaultIntervalDays,omitempty" yaml:"defaultIntervalDays,omitempty"`
	// AlertType is nil when the product raises no alerts.
	AlertType *AlertType `json:"alertType,omitempty" yaml:"alertType,omitempty"`
}

// Policies maps product types to their policy.
type Policies map[ProductType]Policy

func intPtr(v int) *int { return &v }

func alertPtr(v AlertType) *AlertType { return &v }

func boolPtr(v bool) *bool { return &v }

// StageDriven reports whether the interval follows the fermentation stage.
func (p Policy) StageDriven() bool {
	return p.UsesFermentationStages != nil && *p.UsesFermentationStages
}

// DefaultPolicies returns a fresh copy of the built-in policies.
func DefaultPolicies() Policies {
	sgDriven := func() Policy {
		return Policy{
			InitialMeasurements:    []MeasurementType{MeasurementSG, MeasurementPH, MeasurementTemperature},
			OngoingMeasurements:    []MeasurementType{MeasurementSG, MeasurementTemperature},
			PrimaryMeasurement:     MeasurementSG,
			UsesFermentationStages: boolPtr(true),
			AlertType:              alertPtr(AlertMeasurementOverdue),
		}
	}
	aging := func(days int) Policy {
		return Policy{
			InitialMeasurements: []MeasurementType{MeasurementABV, MeasurementSensory, MeasurementVolume},
			OngoingMeasurements: []MeasurementType{MeasurementSensory, MeasurementVolume},
			PrimaryMeasurement:  MeasurementSensory,
			DefaultIntervalDays: intPtr(days),
			AlertType:           alertPtr(AlertCheckInReminder),
		}
	}
	return Policies{
		ProductCider:   sgDriven(),
		ProductPerry:   sgDriven(),
		ProductBrandy:  aging(30),
		ProductPommeau: aging(90),
		ProductJuice: Policy{
			InitialMeasurements: []MeasurementType{MeasurementSG, MeasurementPH},
			PrimaryMeasurement:  MeasurementSG,
		},
	}
}

// Override is a per-batch policy override. Present fields win over the product policy.
type Override struct {
	IntervalDays     *int              `json:"intervalDays,omitempty"`
	MeasurementTypes []MeasurementType `json:"measurementTypes,omitempty"`
	AlertType        *AlertType        `json:"alertType,omitempty"`
	Notes            string            `json:"notes,omitempty"`
}
