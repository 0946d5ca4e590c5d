package pipeline

import (
	"github.com/rotisserie/eris"
)

// ErrRawDataTooSmall indicates the provider returned fewer raw rows than the
// configured minimum.
var ErrRawDataTooSmall = eris.New("gate: raw dataset too small")

// ErrFilteredDataTooSmall indicates universe matching produced an almost-empty
// dataset, usually a silent symbol-set breakage upstream.
var ErrFilteredDataTooSmall = eris.New("gate: filtered dataset too small")

// Gate decides whether a fetched dataset is trustworthy enough to overwrite
// the live cache. Both thresholds are static per-run configuration.
type Gate struct {
	MinRawRows      int
	MinFilteredRows int
}

// Check passes or fails the run before any persisted state is touched.
// The raw check duplicates the fetch-time strict check as a second line of
// defense.
func (g Gate) Check(rawCount, filteredCount int) error {
	if rawCount < g.MinRawRows {
		return eris.Wrapf(ErrRawDataTooSmall, "got %d raw rows, want at least %d", rawCount, g.MinRawRows)
	}
	if filteredCount < g.MinFilteredRows {
		return eris.Wrapf(ErrFilteredDataTooSmall, "got %d filtered rows, want at least %d", filteredCount, g.MinFilteredRows)
	}
	return nil
}
