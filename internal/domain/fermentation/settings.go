package fermentation

import (
	"fmt"
	"time"

	apperrors "github.com/yanqian/ciderworks/pkg/errors"
)

// DefaultTerminalConfirmation separates the two identical hydrometer readings that confirm terminal gravity.
const DefaultTerminalConfirmation = 48 * time.Hour

// StageThresholds are the percent-fermented cut points between stages.
type StageThresholds struct {
	EarlyMax          float64 `json:"earlyMax" yaml:"earlyMax"`
	MidMax            float64 `json:"midMax" yaml:"midMax"`
	ApproachingDryMax float64 `json:"approachingDryMax" yaml:"approachingDryMax"`
}

// DefaultStageThresholds returns the 70/90/98 cut points.
func DefaultStageThresholds() StageThresholds {
	return StageThresholds{EarlyMax: 70, MidMax: 90, ApproachingDryMax: 98}
}

// Validate enforces 0 < earlyMax < midMax < approachingDryMax <= 100.
func (t StageThresholds) Validate() error {
	if !(t.EarlyMax > 0 && t.EarlyMax < t.MidMax && t.MidMax < t.ApproachingDryMax && t.ApproachingDryMax <= 100) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("stage thresholds must satisfy 0 < %v < %v < %v <= 100", t.EarlyMax, t.MidMax, t.ApproachingDryMax), ErrInvalidSettings)
	}
	return nil
}

// StallSettings tune stall detection.
type StallSettings struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	MinDays     float64 `json:"minDays" yaml:"minDays"`
	SGThreshold float64 `json:"sgThreshold" yaml:"sgThreshold"`
}

// DefaultStallSettings flags less than 0.001 SG change over at least 3 days.
func DefaultStallSettings() StallSettings {
	return StallSettings{Enabled: true, MinDays: 3, SGThreshold: 0.001}
}

// Validate enforces minDays > 0 and threshold >= 0 on enabled settings.
func (s StallSettings) Validate() error {
	if !s.Enabled {
		return nil
	}
	if s.MinDays <= 0 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "stall minimum days must be positive", ErrInvalidSettings)
	}
	if s.SGThreshold < 0 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "stall gravity threshold cannot be negative", ErrInvalidSettings)
	}
	return nil
}

// Settings groups everything Analyze needs besides the batch data.
type Settings struct {
	Thresholds           StageThresholds
	Stall                StallSettings
	TerminalConfirmation time.Duration
}

// DefaultSettings returns the built-in analysis settings.
func DefaultSettings() Settings {
	return Settings{
		Thresholds:           DefaultStageThresholds(),
		Stall:                DefaultStallSettings(),
		TerminalConfirmation: DefaultTerminalConfirmation,
	}
}

// Validate checks every part of the settings.
func (s Settings) Validate() error {
	if err := s.Thresholds.Validate(); err != nil {
		return err
	}
	if err := s.Stall.Validate(); err != nil {
		return err
	}
	if s.TerminalConfirmation < 0 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "terminal confirmation window cannot be negative", ErrInvalidSettings)
	}
	return nil
}
