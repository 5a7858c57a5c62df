package labeler

import (
	"context"
	"runtime"
	"sync"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// ScanGrid labels the series for every config, distributing configs across
// a worker pool. Per-config scans are independent and read-only over the
// shared series, so they parallelize freely. Results are returned in input
// order regardless of completion order.
//
// All configs are validated before any scan starts, so a bad config aborts
// the whole grid without partial work.
func (s *Scanner) ScanGrid(ctx context.Context, series domain.PriceSeries, configs []domain.LabelConfig, workers int) ([]*domain.LabelTable, error) {
	for _, cfg := range configs {
		if err := ValidateConfig(cfg); err != nil {
			return nil, err
		}
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(configs) {
		workers = len(configs)
	}

	view := newSeriesView(series)
	tables := make([]*domain.LabelTable, len(configs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				tables[idx] = s.scanView(view, configs[idx])
			}
		}()
	}

	var ctxErr error
dispatch:
	for i := range configs {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if ctxErr != nil {
		return nil, ctxErr
	}
	return tables, nil
}
