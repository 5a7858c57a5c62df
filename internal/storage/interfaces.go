package storage

import (
	"context"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// RankingEntryStore provides access to ranking_entries storage. Entries are
// grouped by batch ID so successive research runs stay separable.
type RankingEntryStore interface {
	// Insert adds a new entry. Returns ErrDuplicateKey if the
	// (batch_id, combo_id) pair exists.
	Insert(ctx context.Context, batchID string, e *domain.RankingEntry) error

	// InsertBulk adds multiple entries atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, batchID string, entries []*domain.RankingEntry) error

	// GetByBatch retrieves all entries for a batch, ordered by composite score
	// DESC then combo identity ASC.
	GetByBatch(ctx context.Context, batchID string) ([]*domain.RankingEntry, error)

	// GetAll retrieves all entries across batches.
	GetAll(ctx context.Context) ([]*domain.RankingEntry, error)
}

// OutcomeTableStore provides access to outcome_records storage. Tables are
// keyed by the series they were scanned from plus the label config ID.
type OutcomeTableStore interface {
	// InsertTable archives all records of a label table for a series.
	// Returns ErrDuplicateKey if (series_id, config_id) already has records.
	InsertTable(ctx context.Context, seriesID string, table *domain.LabelTable) error

	// GetTable reconstitutes a label table for a series and config ID.
	// Returns ErrNotFound if no records exist for the pair.
	GetTable(ctx context.Context, seriesID, configID string) (*domain.LabelTable, error)

	// ListConfigIDs returns the config IDs archived for a series, sorted.
	ListConfigIDs(ctx context.Context, seriesID string) ([]string, error)
}
