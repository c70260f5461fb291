package calibrationstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ciderworks/internal/domain/cellar"
)

// ValkeyStore persists calibration profiles using a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "ciderworks"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// GetCalibration implements cellar.CalibrationStore.
func (s *ValkeyStore) GetCalibration(ctx context.Context, orgID uuid.UUID, instrumentID string) (cellar.CalibrationProfile, bool, error) {
	if instrumentID == "" {
		return cellar.CalibrationProfile{}, false, nil
	}
	cmd := s.client.B().Get().Key(s.profileKey(orgID, instrumentID)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return cellar.CalibrationProfile{}, false, nil
		}
		return cellar.CalibrationProfile{}, false, err
	}
	var profile cellar.CalibrationProfile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return cellar.CalibrationProfile{}, false, err
	}
	return profile, true, nil
}

// SaveCalibration implements cellar.CalibrationStore.
func (s *ValkeyStore) SaveCalibration(ctx context.Context, profile cellar.CalibrationProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	key := s.profileKey(profile.OrganizationID, profile.InstrumentID)
	return s.client.Do(ctx, s.client.B().Set().Key(key).Value(string(payload)).Build()).Error()
}

func (s *ValkeyStore) profileKey(orgID uuid.UUID, instrumentID string) string {
	return fmt.Sprintf("%s:calibration:%s:%s", s.prefix, orgID, instrumentID)
}

var _ cellar.CalibrationStore = (*ValkeyStore)(nil)
