package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ciderworks/internal/domain/cellar"
)

// Handler wires the HTTP transport to the cellar service.
type Handler struct {
	svc    cellar.Service
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc cellar.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

// CorrectReading applies the SG correction pipeline without storing anything.
func (h *Handler) CorrectReading(c *gin.Context) {
	var req cellar.CorrectionRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.CorrectReading(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FitCalibration fits and stores a refractometer calibration.
func (h *Handler) FitCalibration(c *gin.Context) {
	var req cellar.FitCalibrationRequest
	if !bindJSON(c, &req) {
		return
	}
	req.OrganizationID = c.Param("orgId")
	req.InstrumentID = c.Param("instrumentId")
	resp, err := h.svc.FitCalibration(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCalibration returns the stored calibration of an instrument.
func (h *Handler) GetCalibration(c *gin.Context) {
	profile, err := h.svc.GetCalibration(c.Request.Context(), c.Param("orgId"), c.Param("instrumentId"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, profile)
}

// CreateBatch registers a batch.
func (h *Handler) CreateBatch(c *gin.Context) {
	var req cellar.CreateBatchRequest
	if !bindJSON(c, &req) {
		return
	}
	batch, err := h.svc.CreateBatch(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusCreated, batch)
}

// GetBatch returns a batch with its measurement history.
func (h *Handler) GetBatch(c *gin.Context) {
	resp, err := h.svc.GetBatch(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordMeasurement corrects and stores a raw reading.
func (h *Handler) RecordMeasurement(c *gin.Context) {
	var req cellar.RecordMeasurementRequest
	if !bindJSON(c, &req) {
		return
	}
	req.BatchID = c.Param("batchId")
	resp, err := h.svc.RecordMeasurement(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Progress returns the fermentation analysis of a batch.
func (h *Handler) Progress(c *gin.Context) {
	resp, err := h.svc.Progress(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Schedule returns the measurement schedule and due status of a batch.
func (h *Handler) Schedule(c *gin.Context) {
	resp, err := h.svc.Schedule(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
