package cellar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/ciderworks/internal/domain/calibration"
	"github.com/yanqian/ciderworks/internal/domain/fermentation"
	"github.com/yanqian/ciderworks/internal/domain/gravity"
	"github.com/yanqian/ciderworks/internal/domain/schedule"
	apperrors "github.com/yanqian/ciderworks/pkg/errors"
	"github.com/yanqian/ciderworks/pkg/metrics"
	"github.com/yanqian/ciderworks/pkg/util"
)

// Service exposes batch tracking on top of the measurement core.
type Service interface {
	CreateBatch(ctx context.Context, req CreateBatchRequest) (Batch, error)
	GetBatch(ctx context.Context, batchID string) (BatchResponse, error)
	RecordMeasurement(ctx context.Context, req RecordMeasurementRequest) (MeasurementResponse, error)
	CorrectReading(ctx context.Context, req CorrectionRequest) (CorrectionResponse, error)
	FitCalibration(ctx context.Context, req FitCalibrationRequest) (CalibrationResponse, error)
	GetCalibration(ctx context.Context, orgID, instrumentID string) (CalibrationProfile, error)
	Progress(ctx context.Context, batchID string) (ProgressResponse, error)
	Schedule(ctx context.Context, batchID string) (ScheduleResponse, error)
}

type service struct {
	cfg     Config
	repo    BatchRepository
	store   CalibrationStore
	metrics *metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires up the cellar domain.
func NewService(cfg Config, repo BatchRepository, store CalibrationStore, recorder *metrics.Recorder, logger *slog.Logger) Service {
	return &service{
		cfg:     cfg,
		repo:    repo,
		store:   store,
		metrics: recorder,
		logger:  logger.With("component", "cellar.service"),
		now:     util.NowUTC,
	}
}

func (s *service) CreateBatch(ctx context.Context, req CreateBatchRequest) (Batch, error) {
	orgID, err := parseID("organization id", req.OrganizationID)
	if err != nil {
		return Batch{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Batch{}, apperrors.Wrap(apperrors.CodeInvalidInput, "batch name cannot be empty", nil)
	}
	productType, err := schedule.ParseProductType(req.ProductType)
	if err != nil {
		return Batch{}, err
	}
	for _, g := range []struct {
		label string
		sg    *float64
	}{{"original gravity", req.OriginalGravity}, {"target gravity", req.TargetGravity}} {
		if g.sg == nil {
			continue
		}
		if err := gravity.ValidateMeasurementSG(*g.sg); err != nil {
			return Batch{}, apperrors.Wrap(apperrors.CodeInvalidInput, g.label+" is out of range", err)
		}
	}
	if req.OriginalGravity != nil && req.TargetGravity != nil && *req.OriginalGravity <= *req.TargetGravity {
		return Batch{}, apperrors.Wrap(apperrors.CodeDomainInconsistency, "original gravity must be greater than target gravity", fermentation.ErrGravityOrder)
	}
	if req.Thresholds != nil {
		if err := req.Thresholds.Validate(); err != nil {
			return Batch{}, err
		}
	}
	if req.Stall != nil {
		if err := req.Stall.Validate(); err != nil {
			return Batch{}, err
		}
	}
	if o := req.ScheduleOverride; o != nil && o.IntervalDays != nil && *o.IntervalDays <= 0 {
		return Batch{}, apperrors.Wrap(apperrors.CodeInvalidInput, "override interval must be positive", schedule.ErrInvalidOverride)
	}

	batch := Batch{
		ID:               uuid.New(),
		OrganizationID:   orgID,
		Name:             name,
		ProductType:      productType,
		OriginalGravity:  req.OriginalGravity,
		TargetGravity:    req.TargetGravity,
		Thresholds:       req.Thresholds,
		Stall:            req.Stall,
		ScheduleOverride: req.ScheduleOverride,
		CreatedAt:        s.now(),
	}
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return Batch{}, apperrors.Wrap(apperrors.CodeStorage, "create batch failed", err)
	}
	s.logger.Info("batch created", "batchId", batch.ID, "organizationId", orgID, "productType", productType)
	return batch, nil
}

func (s *service) GetBatch(ctx context.Context, batchID string) (BatchResponse, error) {
	batch, records, err := s.loadBatch(ctx, batchID)
	if err != nil {
		return BatchResponse{}, err
	}
	return BatchResponse{Batch: batch, Measurements: records}, nil
}

func (s *service) RecordMeasurement(ctx context.Context, req RecordMeasurementRequest) (MeasurementResponse, error) {
	id, err := parseID("batch id", req.BatchID)
	if err != nil {
		return MeasurementResponse{}, err
	}
	batch, err := s.findBatch(ctx, id)
	if err != nil {
		return MeasurementResponse{}, err
	}
	if !req.InstrumentType.Valid() {
		return MeasurementResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("instrument type %q is not supported", req.InstrumentType), gravity.ErrUnknownInstrument)
	}

	cal, err := s.calibrationFor(ctx, req.InstrumentType, batch.OrganizationID, req.InstrumentID)
	if err != nil {
		return MeasurementResponse{}, err
	}
	res, err := gravity.ApplySGCorrection(gravity.CorrectionInput{
		InstrumentType:  req.InstrumentType,
		RawReading:      req.RawReading,
		TemperatureC:    req.TemperatureC,
		OriginalGravity: batch.OriginalGravity,
		IsFreshJuice:    req.IsFreshJuice,
		Calibration:     cal,
	})
	if err != nil {
		return MeasurementResponse{}, err
	}
	if err := gravity.ValidateMeasurementSG(res.CorrectedSG); err != nil {
		return MeasurementResponse{}, err
	}
	s.metrics.ObserveCorrection(string(res.Strategy))

	measuredAt := s.now()
	if req.MeasuredAt != nil {
		measuredAt = req.MeasuredAt.UTC()
	}
	record := MeasurementRecord{
		ID:              uuid.New(),
		BatchID:         batch.ID,
		SpecificGravity: res.CorrectedSG,
		RawReading:      res.RawReading,
		InstrumentType:  req.InstrumentType,
		Method:          methodFor(req.InstrumentType),
		TemperatureC:    req.TemperatureC,
		Strategy:        res.Strategy,
		Corrections:     res.Corrections,
		MeasuredAt:      measuredAt,
		Notes:           strings.TrimSpace(req.Notes),
	}
	if err := s.repo.AddMeasurement(ctx, record); err != nil {
		return MeasurementResponse{}, apperrors.Wrap(apperrors.CodeStorage, "save measurement failed", err)
	}
	s.metrics.ObserveMeasurement(string(record.Method))
	s.logger.Info("measurement recorded",
		"batchId", batch.ID,
		"instrument", req.InstrumentType,
		"strategy", res.Strategy,
		"raw", res.RawReading,
		"corrected", res.CorrectedSG,
	)
	return MeasurementResponse{Measurement: record, Formatted: gravity.FormatCorrection(res)}, nil
}

func (s *service) CorrectReading(ctx context.Context, req CorrectionRequest) (CorrectionResponse, error) {
	input := req.CorrectionInput
	if input.Calibration == nil && req.OrganizationID != "" && req.InstrumentID != "" {
		orgID, err := parseID("organization id", req.OrganizationID)
		if err != nil {
			return CorrectionResponse{}, err
		}
		cal, err := s.calibrationFor(ctx, input.InstrumentType, orgID, req.InstrumentID)
		if err != nil {
			return CorrectionResponse{}, err
		}
		input.Calibration = cal
	}
	switch {
	case input.Calibration == nil:
		input.Calibration = &gravity.Calibration{HydrometerCalibrationTempC: s.hydrometerTempC()}
	case input.Calibration.HydrometerCalibrationTempC == 0:
		cal := *input.Calibration
		cal.HydrometerCalibrationTempC = s.hydrometerTempC()
		input.Calibration = &cal
	}

	res, err := gravity.ApplySGCorrection(input)
	if err != nil {
		return CorrectionResponse{}, err
	}
	s.metrics.ObserveCorrection(string(res.Strategy))
	s.logger.Debug("reading corrected", "strategy", res.Strategy, "raw", res.RawReading, "corrected", res.CorrectedSG)
	return CorrectionResponse{Result: res, Formatted: gravity.FormatCorrection(res)}, nil
}

func (s *service) FitCalibration(ctx context.Context, req FitCalibrationRequest) (CalibrationResponse, error) {
	orgID, err := parseID("organization id", req.OrganizationID)
	if err != nil {
		return CalibrationResponse{}, err
	}
	instrumentID := strings.TrimSpace(req.InstrumentID)
	if instrumentID == "" {
		return CalibrationResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "instrument id cannot be empty", nil)
	}
	calibTemp := s.hydrometerTempC()
	if req.HydrometerCalibrationTempC != nil {
		calibTemp = *req.HydrometerCalibrationTempC
	}

	fit, err := calibration.Fit(req.Readings, calibTemp)
	if err != nil {
		s.metrics.ObserveFit(metrics.FitFailed)
		s.logger.Warn("calibration fit failed", "organizationId", orgID, "instrumentId", instrumentID, "readings", len(req.Readings), "error", err)
		return CalibrationResponse{}, err
	}
	offset, err := calibration.BaselineOffset(req.Readings, calibTemp)
	if err != nil {
		s.metrics.ObserveFit(metrics.FitFailed)
		return CalibrationResponse{}, err
	}
	s.metrics.ObserveFit(metrics.FitOK)

	profile := CalibrationProfile{
		OrganizationID:             orgID,
		InstrumentID:               instrumentID,
		Coefficients:               fit.Coefficients,
		BaselineOffset:             offset,
		HydrometerCalibrationTempC: calibTemp,
		RSquared:                   fit.RSquared,
		MaxError:                   fit.MaxError,
		AvgError:                   fit.AvgError,
		ReadingCount:               len(req.Readings),
		FittedAt:                   s.now(),
	}
	if err := s.store.SaveCalibration(ctx, profile); err != nil {
		return CalibrationResponse{}, apperrors.Wrap(apperrors.CodeStorage, "save calibration failed", err)
	}
	s.logger.Info("calibration stored",
		"organizationId", orgID,
		"instrumentId", instrumentID,
		"rSquared", fit.RSquared,
		"maxError", fit.MaxError,
	)
	return CalibrationResponse{Profile: profile, Fit: fit}, nil
}

func (s *service) GetCalibration(ctx context.Context, orgID, instrumentID string) (CalibrationProfile, error) {
	org, err := parseID("organization id", orgID)
	if err != nil {
		return CalibrationProfile{}, err
	}
	profile, ok, err := s.store.GetCalibration(ctx, org, strings.TrimSpace(instrumentID))
	if err != nil {
		return CalibrationProfile{}, apperrors.Wrap(apperrors.CodeStorage, "calibration lookup failed", err)
	}
	if !ok {
		return CalibrationProfile{}, apperrors.Wrap(apperrors.CodeNotFound, "calibration not found", nil)
	}
	return profile, nil
}

func (s *service) Progress(ctx context.Context, batchID string) (ProgressResponse, error) {
	batch, records, err := s.loadBatch(ctx, batchID)
	if err != nil {
		return ProgressResponse{}, err
	}
	progress := s.analyze(batch, records)
	s.metrics.ObserveAnalysis(string(progress.Stage), progress.IsStalled, progress.IsTerminalConfirmed)
	if progress.IsStalled {
		s.logger.Warn("fermentation stalled",
			"batchId", batch.ID,
			"gravityChange", progress.Stall.GravityChange,
			"elapsedDays", progress.Stall.ElapsedDays,
		)
	}
	return ProgressResponse{BatchID: batch.ID, Progress: progress}, nil
}

func (s *service) Schedule(ctx context.Context, batchID string) (ScheduleResponse, error) {
	batch, records, err := s.loadBatch(ctx, batchID)
	if err != nil {
		return ScheduleResponse{}, err
	}
	req := schedule.Request{
		ProductType: batch.ProductType,
		Override:    batch.ScheduleOverride,
		Initial:     len(records) == 0,
	}
	if len(records) > 0 {
		req.Stage = s.analyze(batch, records).Stage
	}
	res, err := schedule.ProductSchedule(req, s.cfg.SchedulePolicies)
	if err != nil {
		return ScheduleResponse{}, err
	}

	var last *time.Time
	if len(records) > 0 {
		ts := records[0].MeasuredAt
		last = &ts
	}
	status := schedule.IsMeasurementNeeded(res, last, s.now())
	if status.Needed {
		s.logger.Info("measurement due", "batchId", batch.ID, "priority", status.Priority, "taskType", status.TaskType)
	}
	return ScheduleResponse{BatchID: batch.ID, Schedule: res, Status: status}, nil
}

func (s *service) analyze(batch Batch, records []MeasurementRecord) fermentation.Progress {
	settings := s.cfg.Fermentation
	if batch.Thresholds != nil {
		settings.Thresholds = *batch.Thresholds
	}
	if batch.Stall != nil {
		settings.Stall = *batch.Stall
	}
	measurements := make([]fermentation.Measurement, 0, len(records))
	for _, r := range records {
		measurements = append(measurements, fermentation.Measurement{
			SpecificGravity: r.SpecificGravity,
			MeasuredAt:      r.MeasuredAt,
			Method:          r.Method,
		})
	}
	return fermentation.Analyze(fermentation.AnalysisInput{
		OriginalGravity: batch.OriginalGravity,
		TargetGravity:   batch.TargetGravity,
		Measurements:    measurements,
	}, settings, s.now())
}

func (s *service) calibrationFor(ctx context.Context, instrument gravity.InstrumentType, orgID uuid.UUID, instrumentID string) (*gravity.Calibration, error) {
	cal := &gravity.Calibration{HydrometerCalibrationTempC: s.hydrometerTempC()}
	instrumentID = strings.TrimSpace(instrumentID)
	if instrument != gravity.InstrumentRefractometer || instrumentID == "" {
		return cal, nil
	}
	profile, ok, err := s.store.GetCalibration(ctx, orgID, instrumentID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "calibration lookup failed", err)
	}
	if !ok {
		s.logger.Debug("no stored calibration, using fallback correction", "organizationId", orgID, "instrumentId", instrumentID)
		return cal, nil
	}
	return profile.calibration(), nil
}

func (s *service) hydrometerTempC() float64 {
	if s.cfg.HydrometerCalibrationTempC == 0 {
		return gravity.DefaultCalibrationTempC
	}
	return s.cfg.HydrometerCalibrationTempC
}

func (s *service) loadBatch(ctx context.Context, batchID string) (Batch, []MeasurementRecord, error) {
	id, err := parseID("batch id", batchID)
	if err != nil {
		return Batch{}, nil, err
	}
	batch, err := s.findBatch(ctx, id)
	if err != nil {
		return Batch{}, nil, err
	}
	records, err := s.repo.ListMeasurements(ctx, id)
	if err != nil {
		return Batch{}, nil, apperrors.Wrap(apperrors.CodeStorage, "list measurements failed", err)
	}
	return batch, records, nil
}

func (s *service) findBatch(ctx context.Context, id uuid.UUID) (Batch, error) {
	batch, ok, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return Batch{}, apperrors.Wrap(apperrors.CodeStorage, "batch lookup failed", err)
	}
	if !ok {
		return Batch{}, apperrors.Wrap(apperrors.CodeNotFound, "batch not found", nil)
	}
	return batch, nil
}

func methodFor(t gravity.InstrumentType) fermentation.Method {
	if t == gravity.InstrumentRefractometer {
		return fermentation.MethodRefractometer
	}
	return fermentation.MethodHydrometer
}

var errInvalidID = errors.New("invalid identifier")

func parseID(label, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.CodeInvalidInput, label+" must be a UUID", errors.Join(errInvalidID, err))
	}
	return id, nil
}
