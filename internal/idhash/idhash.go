// Package idhash computes deterministic content-addressed identifiers.
package idhash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// CacheFormatVersion is folded into every cache key. Bump it whenever the
// serialized label table format changes so stale entries are never decoded.
const CacheFormatVersion = "v1"

// SeriesID computes a deterministic content hash of a price series using
// SHA256 over every bar field. Any change to any bar changes the ID.
// Returns hex-encoded hash (64 characters).
func SeriesID(series domain.PriceSeries) string {
	h := sha256.New()
	var buf [8]byte
	writeF := func(f float64) {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	for _, b := range series {
		binary.BigEndian.PutUint64(buf[:], uint64(b.Timestamp))
		h.Write(buf[:])
		writeF(b.Open)
		writeF(b.High)
		writeF(b.Low)
		writeF(b.Close)
		writeF(b.Volume)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CacheKey computes the label cache key for a (series, config set) pair.
// Formula: SHA256(version|series_id|sorted config IDs joined by "|").
// The config set is canonicalized by sorting so permutations of the same
// set always map to the same key.
func CacheKey(seriesID string, configs []domain.LabelConfig) string {
	ids := domain.SortConfigIDs(configs)
	data := CacheFormatVersion + "|" + seriesID + "|" + strings.Join(ids, "|")
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComboID computes a deterministic identifier for one
// (strategy, risk level, label config) combination.
func ComboID(strategyID string, riskLevel float64, configID string) string {
	data := fmt.Sprintf("%s|%g|%s", strategyID, riskLevel, configID)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
