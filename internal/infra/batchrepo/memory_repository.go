package batchrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/ciderworks/internal/domain/cellar"
)

// MemoryRepository is an in-memory BatchRepository used for tests/dev.
type MemoryRepository struct {
	mu sync.RWMutex

	batches      map[uuid.UUID]cellar.Batch
	measurements map[uuid.UUID][]cellar.MeasurementRecord
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		batches:      make(map[uuid.UUID]cellar.Batch),
		measurements: make(map[uuid.UUID][]cellar.MeasurementRecord),
	}
}

// CreateBatch implements cellar.BatchRepository.
func (r *MemoryRepository) CreateBatch(_ context.Context, batch cellar.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.batches[batch.ID]; exists {
		return fmt.Errorf("batch %s already exists", batch.ID)
	}
	r.batches[batch.ID] = batch
	return nil
}

// GetBatch implements cellar.BatchRepository.
func (r *MemoryRepository) GetBatch(_ context.Context, id uuid.UUID) (cellar.Batch, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	batch, ok := r.batches[id]
	return batch, ok, nil
}

// AddMeasurement implements cellar.BatchRepository.
func (r *MemoryRepository) AddMeasurement(_ context.Context, m cellar.MeasurementRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.batches[m.BatchID]; !ok {
		return fmt.Errorf("batch %s does not exist", m.BatchID)
	}
	r.measurements[m.BatchID] = append(r.measurements[m.BatchID], m)
	return nil
}

// ListMeasurements implements cellar.BatchRepository.
func (r *MemoryRepository) ListMeasurements(_ context.Context, batchID uuid.UUID) ([]cellar.MeasurementRecord, error) {
	r.mu.RLock()
	out := append([]cellar.MeasurementRecord(nil), r.measurements[batchID]...)
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MeasuredAt.After(out[j].MeasuredAt)
	})
	return out, nil
}

var _ cellar.BatchRepository = (*MemoryRepository)(nil)
