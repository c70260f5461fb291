package cellar

import (
	"context"

	"github.com/google/uuid"
)

// BatchRepository persists batches and their measurements.
type BatchRepository interface {
	CreateBatch(ctx context.Context, batch Batch) error
	GetBatch(ctx context.Context, id uuid.UUID) (Batch, bool, error)
	AddMeasurement(ctx context.Context, m MeasurementRecord) error
	// ListMeasurements returns the batch history newest-first.
	ListMeasurements(ctx context.Context, batchID uuid.UUID) ([]MeasurementRecord, error)
}

// CalibrationStore persists refractometer calibrations per organization and instrument.
type CalibrationStore interface {
	GetCalibration(ctx context.Context, orgID uuid.UUID, instrumentID string) (CalibrationProfile, bool, error)
	SaveCalibration(ctx context.Context, profile CalibrationProfile) error
}
