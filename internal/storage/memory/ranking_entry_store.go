package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
	"github.com/dans91364-create/NECROZMAv2/internal/idhash"
	"github.com/dans91364-create/NECROZMAv2/internal/storage"
)

// RankingEntryStore is an in-memory implementation of storage.RankingEntryStore.
type RankingEntryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.RankingEntry // batchID -> comboID -> entry
}

// NewRankingEntryStore creates a new in-memory ranking entry store.
func NewRankingEntryStore() *RankingEntryStore {
	return &RankingEntryStore{
		data: make(map[string]map[string]*domain.RankingEntry),
	}
}

func entryComboID(e *domain.RankingEntry) string {
	return idhash.ComboID(e.StrategyID, e.RiskLevel, e.LabelConfigID)
}

func validEntry(e *domain.RankingEntry) bool {
	return e != nil && e.StrategyID != "" && e.LabelConfigID != "" && e.RiskLevel > 0
}

// Insert adds a new entry. Returns ErrDuplicateKey if the pair exists.
func (s *RankingEntryStore) Insert(_ context.Context, batchID string, e *domain.RankingEntry) error {
	if batchID == "" || !validEntry(e) {
		return storage.ErrInvalidInput
	}

	key := entryComboID(e)

	s.mu.Lock()
	defer s.mu.Unlock()

	batch, ok := s.data[batchID]
	if !ok {
		batch = make(map[string]*domain.RankingEntry)
		s.data[batchID] = batch
	}
	if _, exists := batch[key]; exists {
		return storage.ErrDuplicateKey
	}

	entryCopy := *e
	batch[key] = &entryCopy
	return nil
}

// InsertBulk adds multiple entries atomically. Fails entire batch on any duplicate.
func (s *RankingEntryStore) InsertBulk(_ context.Context, batchID string, entries []*domain.RankingEntry) error {
	if batchID == "" {
		return storage.ErrInvalidInput
	}
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[batchID]

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(entries))

	// First pass: check for duplicates (existing + intra-batch)
	for _, e := range entries {
		if !validEntry(e) {
			return storage.ErrInvalidInput
		}
		key := entryComboID(e)

		if _, exists := existing[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	if existing == nil {
		existing = make(map[string]*domain.RankingEntry, len(entries))
		s.data[batchID] = existing
	}

	// Second pass: insert all
	for _, e := range entries {
		entryCopy := *e
		existing[entryComboID(e)] = &entryCopy
	}

	return nil
}

// GetByBatch retrieves all entries for a batch, ordered by composite score
// DESC then combo identity ASC.
func (s *RankingEntryStore) GetByBatch(_ context.Context, batchID string) ([]*domain.RankingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RankingEntry
	for _, e := range s.data[batchID] {
		entryCopy := *e
		result = append(result, &entryCopy)
	}

	sortEntries(result)
	return result, nil
}

// GetAll retrieves all entries across batches.
func (s *RankingEntryStore) GetAll(_ context.Context) ([]*domain.RankingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RankingEntry
	for _, batch := range s.data {
		for _, e := range batch {
			entryCopy := *e
			result = append(result, &entryCopy)
		}
	}

	sortEntries(result)
	return result, nil
}

func sortEntries(entries []*domain.RankingEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CompositeScore != entries[j].CompositeScore {
			return entries[i].CompositeScore > entries[j].CompositeScore
		}
		if entries[i].StrategyID != entries[j].StrategyID {
			return entries[i].StrategyID < entries[j].StrategyID
		}
		if entries[i].RiskLevel != entries[j].RiskLevel {
			return entries[i].RiskLevel < entries[j].RiskLevel
		}
		return entries[i].LabelConfigID < entries[j].LabelConfigID
	})
}

var _ storage.RankingEntryStore = (*RankingEntryStore)(nil)
