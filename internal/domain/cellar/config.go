package cellar

import (
	"github.com/yanqian/ciderworks/internal/domain/fermentation"
	"github.com/yanqian/ciderworks/internal/domain/schedule"
)

// Config holds the organization-wide defaults for the cellar service.
type Config struct {
	Fermentation               fermentation.Settings
	HydrometerCalibrationTempC float64
	SchedulePolicies           schedule.Policies
}
