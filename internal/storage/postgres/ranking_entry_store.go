package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
	"github.com/dans91364-create/NECROZMAv2/internal/idhash"
	"github.com/dans91364-create/NECROZMAv2/internal/storage"
)

// RankingEntryStore implements storage.RankingEntryStore using PostgreSQL.
type RankingEntryStore struct {
	pool *Pool
}

// NewRankingEntryStore creates a new RankingEntryStore.
func NewRankingEntryStore(pool *Pool) *RankingEntryStore {
	return &RankingEntryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RankingEntryStore = (*RankingEntryStore)(nil)

const rankingEntryColumns = `
	batch_id, combo_id, strategy_id, risk_level, label_config_id,
	total_return, win_rate, max_drawdown, sharpe_ratio, sortino_ratio,
	calmar_ratio, profit_factor, expectancy, total_trades,
	composite_score, blown
`

const insertRankingEntryQuery = `
	INSERT INTO ranking_entries (
		batch_id, combo_id, strategy_id, risk_level, label_config_id,
		total_return, win_rate, max_drawdown, sharpe_ratio, sortino_ratio,
		calmar_ratio, profit_factor, expectancy, total_trades,
		composite_score, blown
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10,
		$11, $12, $13, $14,
		$15, $16
	)
`

func rankingEntryArgs(batchID string, e *domain.RankingEntry) []any {
	comboID := idhash.ComboID(e.StrategyID, e.RiskLevel, e.LabelConfigID)
	return []any{
		batchID, comboID, e.StrategyID, e.RiskLevel, e.LabelConfigID,
		e.Metrics.TotalReturn, e.Metrics.WinRate, e.Metrics.MaxDrawdown,
		e.Metrics.SharpeRatio, e.Metrics.SortinoRatio,
		e.Metrics.CalmarRatio, e.Metrics.ProfitFactor, e.Metrics.Expectancy,
		e.Metrics.TotalTrades,
		e.CompositeScore, e.Blown,
	}
}

func validateEntry(batchID string, e *domain.RankingEntry) error {
	if batchID == "" || e == nil || e.StrategyID == "" || e.LabelConfigID == "" || e.RiskLevel <= 0 {
		return storage.ErrInvalidInput
	}
	return nil
}

// Insert adds a new entry. Returns ErrDuplicateKey if (batch_id, combo_id) exists.
func (s *RankingEntryStore) Insert(ctx context.Context, batchID string, e *domain.RankingEntry) error {
	if err := validateEntry(batchID, e); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, insertRankingEntryQuery, rankingEntryArgs(batchID, e)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert ranking entry: %w", err)
	}
	return nil
}

// InsertBulk adds multiple entries atomically. Fails entire batch on any duplicate.
func (s *RankingEntryStore) InsertBulk(ctx context.Context, batchID string, entries []*domain.RankingEntry) error {
	if batchID == "" {
		return storage.ErrInvalidInput
	}
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if err := validateEntry(batchID, e); err != nil {
			return err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx, insertRankingEntryQuery, rankingEntryArgs(batchID, e)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert ranking entry in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByBatch retrieves all entries for a batch, ordered by composite score
// DESC then combo identity ASC.
func (s *RankingEntryStore) GetByBatch(ctx context.Context, batchID string) ([]*domain.RankingEntry, error) {
	query := `
		SELECT ` + rankingEntryColumns + `
		FROM ranking_entries
		WHERE batch_id = $1
		ORDER BY composite_score DESC, strategy_id ASC, risk_level ASC, label_config_id ASC
	`

	rows, err := s.pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("get ranking entries by batch: %w", err)
	}
	defer rows.Close()

	return scanRankingEntries(rows)
}

// GetAll retrieves all entries across batches.
func (s *RankingEntryStore) GetAll(ctx context.Context) ([]*domain.RankingEntry, error) {
	query := `
		SELECT ` + rankingEntryColumns + `
		FROM ranking_entries
		ORDER BY composite_score DESC, strategy_id ASC, risk_level ASC, label_config_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all ranking entries: %w", err)
	}
	defer rows.Close()

	return scanRankingEntries(rows)
}

// scanRankingEntries scans multiple rows into a slice of RankingEntry.
func scanRankingEntries(rows pgx.Rows) ([]*domain.RankingEntry, error) {
	var entries []*domain.RankingEntry

	for rows.Next() {
		var (
			e       domain.RankingEntry
			batchID string
			comboID string
		)
		err := rows.Scan(
			&batchID, &comboID, &e.StrategyID, &e.RiskLevel, &e.LabelConfigID,
			&e.Metrics.TotalReturn, &e.Metrics.WinRate, &e.Metrics.MaxDrawdown,
			&e.Metrics.SharpeRatio, &e.Metrics.SortinoRatio,
			&e.Metrics.CalmarRatio, &e.Metrics.ProfitFactor, &e.Metrics.Expectancy,
			&e.Metrics.TotalTrades,
			&e.CompositeScore, &e.Blown,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ranking entry row: %w", err)
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ranking entry rows: %w", err)
	}

	return entries, nil
}
