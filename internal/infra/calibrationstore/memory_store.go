package calibrationstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/ciderworks/internal/domain/cellar"
)

type profileKey struct {
	org        uuid.UUID
	instrument string
}

// MemoryStore is an in-memory calibration store for tests/dev.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[profileKey]cellar.CalibrationProfile
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[profileKey]cellar.CalibrationProfile)}
}

// GetCalibration implements cellar.CalibrationStore.
func (s *MemoryStore) GetCalibration(_ context.Context, orgID uuid.UUID, instrumentID string) (cellar.CalibrationProfile, bool, error) {
	if instrumentID == "" {
		return cellar.CalibrationProfile{}, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[profileKey{org: orgID, instrument: instrumentID}]
	return profile, ok, nil
}

// SaveCalibration replaces the stored profile for the instrument.
func (s *MemoryStore) SaveCalibration(_ context.Context, profile cellar.CalibrationProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profileKey{org: profile.OrganizationID, instrument: profile.InstrumentID}] = profile
	return nil
}

var _ cellar.CalibrationStore = (*MemoryStore)(nil)
