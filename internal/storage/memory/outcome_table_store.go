package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
	"github.com/dans91364-create/NECROZMAv2/internal/storage"
)

// OutcomeTableStore is an in-memory implementation of storage.OutcomeTableStore.
type OutcomeTableStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.LabelTable // seriesID -> configID -> table
}

// NewOutcomeTableStore creates a new in-memory outcome table store.
func NewOutcomeTableStore() *OutcomeTableStore {
	return &OutcomeTableStore{
		data: make(map[string]map[string]*domain.LabelTable),
	}
}

// InsertTable archives a label table for a series. Returns ErrDuplicateKey
// if (series_id, config_id) already has records.
func (s *OutcomeTableStore) InsertTable(_ context.Context, seriesID string, table *domain.LabelTable) error {
	if seriesID == "" || table == nil || table.ConfigID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	series, ok := s.data[seriesID]
	if !ok {
		series = make(map[string]*domain.LabelTable)
		s.data[seriesID] = series
	}
	if _, exists := series[table.ConfigID]; exists {
		return storage.ErrDuplicateKey
	}

	series[table.ConfigID] = copyTable(table)
	return nil
}

// GetTable retrieves an archived label table. Returns ErrNotFound if absent.
func (s *OutcomeTableStore) GetTable(_ context.Context, seriesID, configID string) (*domain.LabelTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, exists := s.data[seriesID][configID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyTable(table), nil
}

// ListConfigIDs returns the config IDs archived for a series, sorted.
func (s *OutcomeTableStore) ListConfigIDs(_ context.Context, seriesID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data[seriesID]))
	for id := range s.data[seriesID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func copyTable(t *domain.LabelTable) *domain.LabelTable {
	out := &domain.LabelTable{
		ConfigID: t.ConfigID,
		Config:   t.Config,
		Long:     make([]domain.OutcomeRecord, len(t.Long)),
		Short:    make([]domain.OutcomeRecord, len(t.Short)),
	}
	copy(out.Long, t.Long)
	copy(out.Short, t.Short)
	return out
}

var _ storage.OutcomeTableStore = (*OutcomeTableStore)(nil)
