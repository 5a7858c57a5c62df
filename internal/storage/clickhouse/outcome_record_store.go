package clickhouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
	"github.com/dans91364-create/NECROZMAv2/internal/storage"
)

// OutcomeTableStore implements storage.OutcomeTableStore using ClickHouse.
// One row per (series, config, direction, bar); tables are reconstituted on read.
type OutcomeTableStore struct {
	conn *Conn
}

// NewOutcomeTableStore creates a new OutcomeTableStore.
func NewOutcomeTableStore(conn *Conn) *OutcomeTableStore {
	return &OutcomeTableStore{conn: conn}
}

// Compile-time interface check.
var _ storage.OutcomeTableStore = (*OutcomeTableStore)(nil)

// InsertTable archives all records of a label table for a series.
// Returns ErrDuplicateKey if (series_id, config_id) already has records.
func (s *OutcomeTableStore) InsertTable(ctx context.Context, seriesID string, table *domain.LabelTable) error {
	if seriesID == "" || table == nil || table.ConfigID == "" {
		return storage.ErrInvalidInput
	}

	// MergeTree doesn't enforce uniqueness, so check before inserting.
	exists, err := s.exists(ctx, seriesID, table.ConfigID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO outcome_records (
			series_id, config_id, target_pips, stop_pips, horizon_bars,
			direction, bar_index, outcome, mfe, mae, r_multiple, time_to_result
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	appendRecords := func(records []domain.OutcomeRecord) error {
		for _, r := range records {
			err := batch.Append(
				seriesID, table.ConfigID,
				table.Config.TargetPips, table.Config.StopPips, int64(table.Config.HorizonBars),
				int8(r.Direction), int64(r.BarIndex), string(r.Outcome),
				r.MFE, r.MAE, r.RMultiple, int64(r.TimeToResult),
			)
			if err != nil {
				return fmt.Errorf("append to batch: %w", err)
			}
		}
		return nil
	}
	if err := appendRecords(table.Long); err != nil {
		return err
	}
	if err := appendRecords(table.Short); err != nil {
		return err
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetTable reconstitutes a label table for a series and config ID.
// Returns ErrNotFound if no records exist for the pair.
func (s *OutcomeTableStore) GetTable(ctx context.Context, seriesID, configID string) (*domain.LabelTable, error) {
	query := `
		SELECT
			target_pips, stop_pips, horizon_bars,
			direction, bar_index, outcome, mfe, mae, r_multiple, time_to_result
		FROM outcome_records
		WHERE series_id = ? AND config_id = ?
		ORDER BY direction DESC, bar_index ASC
	`

	rows, err := s.conn.Query(ctx, query, seriesID, configID)
	if err != nil {
		return nil, fmt.Errorf("query outcome records: %w", err)
	}
	defer rows.Close()

	table := &domain.LabelTable{ConfigID: configID}
	found := false

	for rows.Next() {
		var (
			targetPips, stopPips   float64
			horizonBars            int64
			direction              int8
			barIndex, timeToResult int64
			outcome                string
			mfe, mae, rMultiple    float64
		)
		err := rows.Scan(
			&targetPips, &stopPips, &horizonBars,
			&direction, &barIndex, &outcome, &mfe, &mae, &rMultiple, &timeToResult,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outcome record row: %w", err)
		}

		found = true
		table.Config = domain.LabelConfig{
			TargetPips:  targetPips,
			StopPips:    stopPips,
			HorizonBars: int(horizonBars),
		}
		rec := domain.OutcomeRecord{
			BarIndex:     int(barIndex),
			Direction:    domain.Direction(direction),
			Outcome:      domain.Outcome(outcome),
			MFE:          mfe,
			MAE:          mae,
			RMultiple:    rMultiple,
			TimeToResult: int(timeToResult),
		}
		if rec.Direction == domain.Long {
			table.Long = append(table.Long, rec)
		} else {
			table.Short = append(table.Short, rec)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome record rows: %w", err)
	}
	if !found {
		return nil, storage.ErrNotFound
	}

	return table, nil
}

// ListConfigIDs returns the config IDs archived for a series, sorted.
func (s *OutcomeTableStore) ListConfigIDs(ctx context.Context, seriesID string) ([]string, error) {
	query := `
		SELECT DISTINCT config_id
		FROM outcome_records
		WHERE series_id = ?
		ORDER BY config_id ASC
	`

	rows, err := s.conn.Query(ctx, query, seriesID)
	if err != nil {
		return nil, fmt.Errorf("query config ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan config id row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config id rows: %w", err)
	}

	return ids, nil
}

// exists checks whether any records are archived for (series_id, config_id).
func (s *OutcomeTableStore) exists(ctx context.Context, seriesID, configID string) (bool, error) {
	query := `
		SELECT count(*) FROM outcome_records
		WHERE series_id = ? AND config_id = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, seriesID, configID).Scan(&count)
	if err != nil {
		// ClickHouse reports missing tables as errors, not empty results.
		if strings.Contains(err.Error(), "doesn't exist") {
			return false, nil
		}
		return false, err
	}
	return count > 0, nil
}
