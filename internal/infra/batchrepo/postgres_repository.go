package batchrepo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/ciderworks/internal/domain/cellar"
	"github.com/yanqian/ciderworks/internal/domain/fermentation"
	"github.com/yanqian/ciderworks/internal/domain/gravity"
	"github.com/yanqian/ciderworks/internal/domain/schedule"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS batches (
	id                UUID PRIMARY KEY,
	organization_id   UUID NOT NULL,
	name              TEXT NOT NULL,
	product_type      TEXT NOT NULL,
	original_gravity  DOUBLE PRECISION,
	target_gravity    DOUBLE PRECISION,
	settings          JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS batch_measurements (
	id                UUID PRIMARY KEY,
	batch_id          UUID NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
	specific_gravity  DOUBLE PRECISION NOT NULL,
	raw_reading       DOUBLE PRECISION NOT NULL,
	instrument_type   TEXT NOT NULL,
	method            TEXT NOT NULL,
	temperature_c     DOUBLE PRECISION,
	strategy          TEXT NOT NULL,
	corrections       JSONB NOT NULL DEFAULT '{}'::jsonb,
	measured_at       TIMESTAMPTZ NOT NULL,
	notes             TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS batch_measurements_batch_measured_idx
	ON batch_measurements (batch_id, measured_at DESC);
`

// batchSettings is the JSONB column holding the per-batch overrides.
type batchSettings struct {
	Thresholds       *fermentation.StageThresholds `json:"thresholds,omitempty"`
	Stall            *fermentation.StallSettings   `json:"stall,omitempty"`
	ScheduleOverride *schedule.Override            `json:"scheduleOverride,omitempty"`
}

// PostgresRepository implements cellar.BatchRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the tables when they are missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schemaSQL)
	return err
}

// CreateBatch inserts a new batch row.
func (r *PostgresRepository) CreateBatch(ctx context.Context, batch cellar.Batch) error {
	settings, err := json.Marshal(batchSettings{
		Thresholds:       batch.Thresholds,
		Stall:            batch.Stall,
		ScheduleOverride: batch.ScheduleOverride,
	})
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO batches (id, organization_id, name, product_type, original_gravity, target_gravity, settings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, batch.ID, batch.OrganizationID, batch.Name, string(batch.ProductType),
		batch.OriginalGravity, batch.TargetGravity, settings, batch.CreatedAt)
	return err
}

// GetBatch fetches a batch by id.
func (r *PostgresRepository) GetBatch(ctx context.Context, id uuid.UUID) (cellar.Batch, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, name, product_type, original_gravity, target_gravity, settings, created_at
		FROM batches
		WHERE id = $1
	`, id)
	var (
		batch       cellar.Batch
		productType string
		settings    []byte
	)
	err := row.Scan(&batch.ID, &batch.OrganizationID, &batch.Name, &productType,
		&batch.OriginalGravity, &batch.TargetGravity, &settings, &batch.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return cellar.Batch{}, false, nil
	}
	if err != nil {
		return cellar.Batch{}, false, err
	}
	batch.ProductType = schedule.ProductType(productType)
	if len(settings) > 0 {
		var s batchSettings
		if err := json.Unmarshal(settings, &s); err != nil {
			return cellar.Batch{}, false, err
		}
		batch.Thresholds = s.Thresholds
		batch.Stall = s.Stall
		batch.ScheduleOverride = s.ScheduleOverride
	}
	return batch, true, nil
}

// AddMeasurement inserts a corrected measurement.
func (r *PostgresRepository) AddMeasurement(ctx context.Context, m cellar.MeasurementRecord) error {
	corrections, err := json.Marshal(m.Corrections)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO batch_measurements
			(id, batch_id, specific_gravity, raw_reading, instrument_type, method, temperature_c, strategy, corrections, measured_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, m.ID, m.BatchID, m.SpecificGravity, m.RawReading, string(m.InstrumentType), string(m.Method),
		m.TemperatureC, string(m.Strategy), corrections, m.MeasuredAt, m.Notes)
	return err
}

// ListMeasurements returns the batch history newest-first.
func (r *PostgresRepository) ListMeasurements(ctx context.Context, batchID uuid.UUID) ([]cellar.MeasurementRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, batch_id, specific_gravity, raw_reading, instrument_type, method, temperature_c, strategy, corrections, measured_at, notes
		FROM batch_measurements
		WHERE batch_id = $1
		ORDER BY measured_at DESC
	`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []cellar.MeasurementRecord
	for rows.Next() {
		record, err := scanMeasurement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeasurement(row rowScanner) (cellar.MeasurementRecord, error) {
	var (
		m           cellar.MeasurementRecord
		instrument  string
		method      string
		strategy    string
		corrections []byte
	)
	if err := row.Scan(&m.ID, &m.BatchID, &m.SpecificGravity, &m.RawReading, &instrument, &method,
		&m.TemperatureC, &strategy, &corrections, &m.MeasuredAt, &m.Notes); err != nil {
		return cellar.MeasurementRecord{}, err
	}
	m.InstrumentType = gravity.InstrumentType(instrument)
	m.Method = fermentation.Method(method)
	m.Strategy = gravity.Strategy(strategy)
	if len(corrections) > 0 {
		if err := json.Unmarshal(corrections, &m.Corrections); err != nil {
			return cellar.MeasurementRecord{}, err
		}
	}
	m.MeasuredAt = m.MeasuredAt.UTC()
	return m, nil
}

var _ cellar.BatchRepository = (*PostgresRepository)(nil)
