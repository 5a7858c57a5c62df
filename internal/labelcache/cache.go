// Package labelcache persists scanned label tables on disk, addressed by
// the content hash of the (price series, config set) pair. A warm cache
// returns tables identical to a fresh scan; a missing or corrupt entry is
// a recoverable miss, never an error.
package labelcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
	"github.com/dans91364-create/NECROZMAv2/internal/idhash"
	"github.com/dans91364-create/NECROZMAv2/internal/labeler"
)

// ErrCorruptEntry marks a cache file that exists but cannot be decoded.
// It is handled internally as a miss and surfaced only in logs.
var ErrCorruptEntry = errors.New("corrupt cache entry")

// Cache is a content-addressed label table store rooted at one directory.
type Cache struct {
	dir string
	log *slog.Logger
}

// New creates a Cache rooted at dir. The directory is created on first Put.
func New(dir string) *Cache {
	return &Cache{
		dir: dir,
		log: slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used for recoverable cache events.
func (c *Cache) WithLogger(log *slog.Logger) *Cache {
	c.log = log
	return c
}

// entry is the on-disk envelope. Version mismatches decode as misses.
type entry struct {
	Version string               `json:"version"`
	Key     string               `json:"key"`
	Tables  []*domain.LabelTable `json:"tables"`
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, "labels_"+key+".json")
}

// Get returns the cached tables for key. The second return value reports
// whether the lookup hit. Corrupt entries are discarded and reported as
// misses so callers always fall back to a fresh scan.
func (c *Cache) Get(key string) ([]*domain.LabelTable, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.log.Warn("discarding unreadable cache entry",
			"key", key, "err", fmt.Errorf("%w: %v", ErrCorruptEntry, err))
		return nil, false, nil
	}
	if e.Version != idhash.CacheFormatVersion || e.Key != key || len(e.Tables) == 0 {
		c.log.Warn("discarding stale cache entry",
			"key", key, "version", e.Version)
		return nil, false, nil
	}
	return e.Tables, true, nil
}

// Put writes the tables under key. The write goes through a temp file and
// an atomic rename, so concurrent writers of the same key are safe: the
// content is deterministic and last write wins.
func (c *Cache) Put(key string, tables []*domain.LabelTable) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.Marshal(entry{
		Version: idhash.CacheFormatVersion,
		Key:     key,
		Tables:  tables,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, "labels_*.tmp")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish cache entry: %w", err)
	}
	return nil
}

// GetOrScan resolves the cache key for (series, configs) and returns the
// cached tables on a hit, or scans the full grid and caches the result.
// The returned key lets callers correlate cache entries with archives.
func (c *Cache) GetOrScan(ctx context.Context, series domain.PriceSeries, configs []domain.LabelConfig, scanner *labeler.Scanner, workers int) ([]*domain.LabelTable, string, bool, error) {
	key := idhash.CacheKey(idhash.SeriesID(series), configs)

	tables, ok, err := c.Get(key)
	if err != nil {
		return nil, key, false, err
	}
	if ok {
		return tables, key, true, nil
	}

	tables, err = scanner.ScanGrid(ctx, series, configs, workers)
	if err != nil {
		return nil, key, false, err
	}
	if err := c.Put(key, tables); err != nil {
		return nil, key, false, err
	}
	return tables, key, false, nil
}
