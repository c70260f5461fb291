package cellar

import (
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/ciderworks/internal/domain/calibration"
	"github.com/yanqian/ciderworks/internal/domain/fermentation"
	"github.com/yanqian/ciderworks/internal/domain/gravity"
	"github.com/yanqian/ciderworks/internal/domain/schedule"
)

// Batch is a tracked production batch.
type Batch struct {
	ID              uuid.UUID            `json:"id"`
	OrganizationID  uuid.UUID            `json:"organizationId"`
	Name            string               `json:"name"`
	ProductType     schedule.ProductType `json:"productType"`
	OriginalGravity *float64             `json:"originalGravity,omitempty"`
	TargetGravity   *float64             `json:"targetGravity,omitempty"`
	// Per-batch settings override the organization defaults when set.
	Thresholds       *fermentation.StageThresholds `json:"thresholds,omitempty"`
	Stall            *fermentation.StallSettings   `json:"stall,omitempty"`
	ScheduleOverride *schedule.Override            `json:"scheduleOverride,omitempty"`
	CreatedAt        time.Time                     `json:"createdAt"`
}

// MeasurementRecord is a persisted, already corrected gravity reading.
type MeasurementRecord struct {
	ID              uuid.UUID              `json:"id"`
	BatchID         uuid.UUID              `json:"batchId"`
	SpecificGravity float64                `json:"specificGravity"`
	RawReading      float64                `json:"rawReading"`
	InstrumentType  gravity.InstrumentType `json:"instrumentType"`
	Method          fermentation.Method    `json:"method"`
	TemperatureC    *float64               `json:"temperatureC,omitempty"`
	Strategy        gravity.Strategy       `json:"strategy"`
	Corrections     gravity.Breakdown      `json:"corrections"`
	MeasuredAt      time.Time              `json:"measuredAt"`
	Notes           string                 `json:"notes,omitempty"`
}

// CalibrationProfile is the stored calibration of one refractometer.
type CalibrationProfile struct {
	OrganizationID             uuid.UUID            `json:"organizationId"`
	InstrumentID               string               `json:"instrumentId"`
	Coefficients               gravity.Coefficients `json:"coefficients"`
	BaselineOffset             float64              `json:"baselineOffset"`
	HydrometerCalibrationTempC float64              `json:"hydrometerCalibrationTempC"`
	RSquared                   float64              `json:"rSquared"`
	MaxError                   float64              `json:"maxError"`
	AvgError                   float64              `json:"avgError"`
	ReadingCount               int                  `json:"readingCount"`
	FittedAt                   time.Time            `json:"fittedAt"`
}

func (p CalibrationProfile) calibration() *gravity.Calibration {
	coeffs := p.Coefficients
	return &gravity.Calibration{
		Coefficients:                &coeffs,
		RefractometerBaselineOffset: p.BaselineOffset,
		HydrometerCalibrationTempC:  p.HydrometerCalibrationTempC,
	}
}

// CreateBatchRequest registers a new batch.
type CreateBatchRequest struct {
	OrganizationID   string                        `json:"organizationId"`
	Name             string                        `json:"name"`
	ProductType      string                        `json:"productType"`
	OriginalGravity  *float64                      `json:"originalGravity,omitempty"`
	TargetGravity    *float64                      `json:"targetGravity,omitempty"`
	Thresholds       *fermentation.StageThresholds `json:"thresholds,omitempty"`
	Stall            *fermentation.StallSettings   `json:"stall,omitempty"`
	ScheduleOverride *schedule.Override            `json:"scheduleOverride,omitempty"`
}

// RecordMeasurementRequest logs a raw instrument reading against a batch.
type RecordMeasurementRequest struct {
	BatchID        string                 `json:"-"`
	InstrumentType gravity.InstrumentType `json:"instrumentType"`
	// InstrumentID selects the stored refractometer calibration.
	InstrumentID string     `json:"instrumentId,omitempty"`
	RawReading   float64    `json:"rawReading"`
	TemperatureC *float64   `json:"temperatureC,omitempty"`
	IsFreshJuice bool       `json:"isFreshJuice,omitempty"`
	MeasuredAt   *time.Time `json:"measuredAt,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// CorrectionRequest corrects a reading without persisting it. When
// OrganizationID and InstrumentID are set and Calibration is absent, the
// stored calibration is used.
type CorrectionRequest struct {
	gravity.CorrectionInput
	OrganizationID string `json:"organizationId,omitempty"`
	InstrumentID   string `json:"instrumentId,omitempty"`
}

// CorrectionResponse carries the result and its display string.
type CorrectionResponse struct {
	Result    gravity.CorrectionResult `json:"result"`
	Formatted string                   `json:"formatted"`
}

// FitCalibrationRequest fits and stores a refractometer calibration.
type FitCalibrationRequest struct {
	OrganizationID string `json:"-"`
	InstrumentID   string `json:"-"`
	// HydrometerCalibrationTempC falls back to the configured value when nil.
	HydrometerCalibrationTempC *float64              `json:"hydrometerCalibrationTempC,omitempty"`
	Readings                   []calibration.Reading `json:"readings"`
}

// CalibrationResponse is returned after a successful fit.
type CalibrationResponse struct {
	Profile CalibrationProfile `json:"profile"`
	Fit     calibration.Result `json:"fit"`
}

// BatchResponse is a batch with its newest-first measurements.
type BatchResponse struct {
	Batch        Batch               `json:"batch"`
	Measurements []MeasurementRecord `json:"measurements"`
}

// MeasurementResponse is returned after recording a measurement.
type MeasurementResponse struct {
	Measurement MeasurementRecord `json:"measurement"`
	Formatted   string            `json:"formatted"`
}

// ProgressResponse is the dashboard view of a batch.
type ProgressResponse struct {
	BatchID  uuid.UUID             `json:"batchId"`
	Progress fermentation.Progress `json:"progress"`
}

// ScheduleResponse is the resolved schedule plus the due status.
type ScheduleResponse struct {
	BatchID  uuid.UUID       `json:"batchId"`
	Schedule schedule.Result `json:"schedule"`
	Status   schedule.Status `json:"status"`
}
