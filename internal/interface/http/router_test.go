package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/ciderworks/internal/domain/calibration"
	"github.com/yanqian/ciderworks/internal/domain/cellar"
	"github.com/yanqian/ciderworks/internal/domain/fermentation"
	"github.com/yanqian/ciderworks/internal/domain/gravity"
	"github.com/yanqian/ciderworks/internal/domain/schedule"
	"github.com/yanqian/ciderworks/internal/infra/config"
	apperrors "github.com/yanqian/ciderworks/pkg/errors"
)

func TestRouter_CorrectReading(t *testing.T) {
	svc := &stubCellar{
		correctFn: func(_ context.Context, req cellar.CorrectionRequest) (cellar.CorrectionResponse, error) {
			require.Equal(t, gravity.InstrumentRefractometer, req.InstrumentType)
			require.Equal(t, 1.020, req.RawReading)
			require.True(t, req.IsFreshJuice)
			return cellar.CorrectionResponse{
				Result:    gravity.CorrectionResult{CorrectedSG: 1.018, RawReading: 1.020, Strategy: gravity.StrategyBaselineOnly},
				Formatted: "1.0180 (raw: 1.0200, baseline: -0.0020)",
			}, nil
		},
	}

	rec := performRequest(t, newRouterUnderTest(t, svc), http.MethodPost, "/api/v1/corrections",
		`{"instrumentType":"refractometer","rawReading":1.020,"isFreshJuice":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(requestIDHeader))

	var got cellar.CorrectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 1.018, got.Result.CorrectedSG)
	require.Equal(t, gravity.StrategyBaselineOnly, got.Result.Strategy)
}

func TestRouter_InvalidJSON(t *testing.T) {
	rec := performRequest(t, newRouterUnderTest(t, &stubCellar{}), http.MethodPost, "/api/v1/corrections", `{"rawReading":"high"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", body["error"]["code"])
	require.NotEmpty(t, body["error"]["message"])
}

func TestRouter_DomainErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "validation", err: apperrors.Wrap(apperrors.CodeInvalidInput, "sample temperature out of range", gravity.ErrInvalidTemperature), status: http.StatusBadRequest, code: apperrors.CodeInvalidInput},
		{name: "insufficient data", err: apperrors.Wrap(apperrors.CodeInsufficientData, "need 3 readings", calibration.ErrInsufficientData), status: http.StatusUnprocessableEntity, code: apperrors.CodeInsufficientData},
		{name: "singular", err: apperrors.Wrap(apperrors.CodeSingularMatrix, "collinear", calibration.ErrSingularMatrix), status: http.StatusUnprocessableEntity, code: apperrors.CodeSingularMatrix},
		{name: "not found", err: apperrors.Wrap(apperrors.CodeNotFound, "calibration not found", nil), status: http.StatusNotFound, code: apperrors.CodeNotFound},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, code: "internal_error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubCellar{
				getCalibrationFn: func(context.Context, string, string) (cellar.CalibrationProfile, error) {
					return cellar.CalibrationProfile{}, tc.err
				},
			}
			rec := performRequest(t, newRouterUnderTest(t, svc), http.MethodGet, "/api/v1/organizations/org/instruments/r1/calibration", "")
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.code, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
		})
	}
}

func TestRouter_FitCalibrationUsesPathParams(t *testing.T) {
	orgID := uuid.NewString()
	svc := &stubCellar{
		fitFn: func(_ context.Context, req cellar.FitCalibrationRequest) (cellar.CalibrationResponse, error) {
			require.Equal(t, orgID, req.OrganizationID)
			require.Equal(t, "refrac-7", req.InstrumentID)
			require.Len(t, req.Readings, 3)
			return cellar.CalibrationResponse{Profile: cellar.CalibrationProfile{InstrumentID: req.InstrumentID, RSquared: 0.97}}, nil
		},
	}
	body := `{"readings":[
		{"originalGravity":1.05,"refractometerReading":1.02,"hydrometerReading":1.01,"temperatureC":20},
		{"originalGravity":1.06,"refractometerReading":1.03,"hydrometerReading":1.02,"temperatureC":20},
		{"originalGravity":1.055,"refractometerReading":1.01,"hydrometerReading":0.999,"temperatureC":20}
	]}`
	rec := performRequest(t, newRouterUnderTest(t, svc), http.MethodPut, "/api/v1/organizations/"+orgID+"/instruments/refrac-7/calibration", body)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RecordMeasurement(t *testing.T) {
	batchID := uuid.New()
	svc := &stubCellar{
		recordFn: func(_ context.Context, req cellar.RecordMeasurementRequest) (cellar.MeasurementResponse, error) {
			require.Equal(t, batchID.String(), req.BatchID)
			require.NotNil(t, req.TemperatureC)
			return cellar.MeasurementResponse{
				Measurement: cellar.MeasurementRecord{BatchID: batchID, SpecificGravity: 1.042},
				Formatted:   "1.0420 (raw: 1.0400, temp: +0.0020)",
			}, nil
		},
	}
	rec := performRequest(t, newRouterUnderTest(t, svc), http.MethodPost, "/api/v1/batches/"+batchID.String()+"/measurements",
		`{"instrumentType":"hydrometer","rawReading":1.040,"temperatureC":25}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"formatted":"1.0420 (raw: 1.0400, temp: +0.0020)"`)
}

func TestRouter_ProgressEncodesNeverAsNull(t *testing.T) {
	batchID := uuid.New()
	svc := &stubCellar{
		progressFn: func(_ context.Context, id string) (cellar.ProgressResponse, error) {
			return cellar.ProgressResponse{
				BatchID: batchID,
				Progress: fermentation.Analyze(fermentation.AnalysisInput{}, fermentation.DefaultSettings(),
					time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			}, nil
		},
	}
	rec := performRequest(t, newRouterUnderTest(t, svc), http.MethodGet, "/api/v1/batches/"+batchID.String()+"/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"daysSinceLastMeasurement":null`)
	require.Contains(t, rec.Body.String(), `"stage":"unknown"`)
}

func TestRouter_Schedule(t *testing.T) {
	svc := &stubCellar{
		scheduleFn: func(_ context.Context, id string) (cellar.ScheduleResponse, error) {
			res, err := schedule.ProductSchedule(schedule.Request{ProductType: schedule.ProductJuice, Initial: true}, nil)
			require.NoError(t, err)
			return cellar.ScheduleResponse{Schedule: res}, nil
		},
	}
	rec := performRequest(t, newRouterUnderTest(t, svc), http.MethodGet, "/api/v1/batches/"+uuid.NewString()+"/schedule", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"intervalDays":{"min":null,"max":null}`)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	server := newRouterUnderTest(t, &stubCellar{})

	rec := performRequest(t, server, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(t, server, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "router_test_up")
}

func TestRouter_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	svc := &stubCellar{
		correctFn: func(context.Context, cellar.CorrectionRequest) (cellar.CorrectionResponse, error) {
			attempts++
			if attempts < 2 {
				return cellar.CorrectionResponse{}, apperrors.Wrap(apperrors.CodeStorage, "calibration lookup failed", errors.New("timeout"))
			}
			return cellar.CorrectionResponse{Formatted: "1.0200"}, nil
		},
	}
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}
	server := NewRouter(cfg, NewHandler(svc, newTestLogger()), prometheus.NewRegistry())

	rec := performRequest(t, server, http.MethodPost, "/api/v1/corrections", `{"instrumentType":"hydrometer","rawReading":1.02,"temperatureC":15.56}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, attempts)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := NewRouter(cfg, NewHandler(&stubCellar{}, newTestLogger()), prometheus.NewRegistry())

	path := "/api/v1/batches/" + uuid.NewString()
	require.Equal(t, http.StatusOK, performRequest(t, server, http.MethodGet, path, "").Code)
	rec := performRequest(t, server, http.MethodGet, path, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func performRequest(t *testing.T, server *http.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

func newRouterUnderTest(t *testing.T, svc cellar.Service) *http.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{Name: "router_test_up", Help: "test gauge"}))
	return NewRouter(testConfig(), NewHandler(svc, newTestLogger()), reg)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body), strings.TrimSpace(string(raw)))
	return body
}

type stubCellar struct {
	correctFn        func(context.Context, cellar.CorrectionRequest) (cellar.CorrectionResponse, error)
	fitFn            func(context.Context, cellar.FitCalibrationRequest) (cellar.CalibrationResponse, error)
	getCalibrationFn func(context.Context, string, string) (cellar.CalibrationProfile, error)
	recordFn         func(context.Context, cellar.RecordMeasurementRequest) (cellar.MeasurementResponse, error)
	progressFn       func(context.Context, string) (cellar.ProgressResponse, error)
	scheduleFn       func(context.Context, string) (cellar.ScheduleResponse, error)
}

func (s *stubCellar) CreateBatch(_ context.Context, req cellar.CreateBatchRequest) (cellar.Batch, error) {
	return cellar.Batch{ID: uuid.New(), Name: req.Name}, nil
}

func (s *stubCellar) GetBatch(_ context.Context, batchID string) (cellar.BatchResponse, error) {
	return cellar.BatchResponse{}, nil
}

func (s *stubCellar) RecordMeasurement(ctx context.Context, req cellar.RecordMeasurementRequest) (cellar.MeasurementResponse, error) {
	if s.recordFn != nil {
		return s.recordFn(ctx, req)
	}
	return cellar.MeasurementResponse{}, nil
}

func (s *stubCellar) CorrectReading(ctx context.Context, req cellar.CorrectionRequest) (cellar.CorrectionResponse, error) {
	if s.correctFn != nil {
		return s.correctFn(ctx, req)
	}
	return cellar.CorrectionResponse{}, nil
}

func (s *stubCellar) FitCalibration(ctx context.Context, req cellar.FitCalibrationRequest) (cellar.CalibrationResponse, error) {
	if s.fitFn != nil {
		return s.fitFn(ctx, req)
	}
	return cellar.CalibrationResponse{}, nil
}

func (s *stubCellar) GetCalibration(ctx context.Context, orgID, instrumentID string) (cellar.CalibrationProfile, error) {
	if s.getCalibrationFn != nil {
		return s.getCalibrationFn(ctx, orgID, instrumentID)
	}
	return cellar.CalibrationProfile{}, nil
}

func (s *stubCellar) Progress(ctx context.Context, batchID string) (cellar.ProgressResponse, error) {
	if s.progressFn != nil {
		return s.progressFn(ctx, batchID)
	}
	return cellar.ProgressResponse{}, nil
}

func (s *stubCellar) Schedule(ctx context.Context, batchID string) (cellar.ScheduleResponse, error) {
	if s.scheduleFn != nil {
		return s.scheduleFn(ctx, batchID)
	}
	return cellar.ScheduleResponse{}, nil
}
