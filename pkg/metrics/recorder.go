package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder bundles the cellar service metrics.
type Recorder struct {
	CorrectionsTotal  *prometheus.CounterVec
	CalibrationFits   *prometheus.CounterVec
	AnalysesTotal     *prometheus.CounterVec
	StallsDetected    prometheus.Counter
	TerminalConfirmed prometheus.Counter
	MeasurementsTotal *prometheus.CounterVec
}

// NewRecorder constructs the metrics and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		CorrectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ciderworks_sg_corrections_total",
				Help: "Total SG corrections by strategy",
			},
			[]string{"strategy"},
		),
		CalibrationFits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ciderworks_calibration_fits_total",
				Help: "Total refractometer calibration fits by result",
			},
			[]string{"result"},
		),
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ciderworks_progress_analyses_total",
				Help: "Total fermentation progress analyses by stage",
			},
			[]string{"stage"},
		),
		StallsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ciderworks_stalls_detected_total",
			Help: "Total analyses that reported a stalled fermentation",
		}),
		TerminalConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ciderworks_terminal_confirmed_total",
			Help: "Total analyses that confirmed terminal gravity",
		}),
		MeasurementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ciderworks_measurements_recorded_total",
				Help: "Total batch measurements recorded by method",
			},
			[]string{"method"},
		),
	}
	reg.MustRegister(
		r.CorrectionsTotal,
		r.CalibrationFits,
		r.AnalysesTotal,
		r.StallsDetected,
		r.TerminalConfirmed,
		r.MeasurementsTotal,
	)
	return r
}

// Fit result labels.
const (
	FitOK     = "ok"
	FitFailed = "failed"
)

// ObserveCorrection counts one applied correction.
func (r *Recorder) ObserveCorrection(strategy string) {
	if r == nil {
		return
	}
	r.CorrectionsTotal.WithLabelValues(strategy).Inc()
}

// ObserveFit counts one calibration fit attempt.
func (r *Recorder) ObserveFit(result string) {
	if r == nil {
		return
	}
	r.CalibrationFits.WithLabelValues(result).Inc()
}

// ObserveAnalysis counts one progress analysis and its anomalies.
func (r *Recorder) ObserveAnalysis(stage string, stalled, terminalConfirmed bool) {
	if r == nil {
		return
	}
	r.AnalysesTotal.WithLabelValues(stage).Inc()
	if stalled {
		r.StallsDetected.Inc()
	}
	if terminalConfirmed {
		r.TerminalConfirmed.Inc()
	}
}

// ObserveMeasurement counts one recorded measurement.
func (r *Recorder) ObserveMeasurement(method string) {
	if r == nil {
		return
	}
	r.MeasurementsTotal.WithLabelValues(method).Inc()
}
