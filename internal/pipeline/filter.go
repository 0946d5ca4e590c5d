// Package pipeline holds the cache-write safety policy: universe filtering,
// the sanity gate, archival before overwrite, and history backfill.
package pipeline

import (
	"strings"

	"github.com/sells-group/earnings-cli/internal/alphavantage"
	"github.com/sells-group/earnings-cli/internal/model"
	"github.com/sells-group/earnings-cli/internal/universe"
)

// Filter reduces raw calendar rows to universe members with a non-empty
// reportDate, trimming all fields and normalizing an empty estimate to nil.
// Provider row order is preserved; this is a pure transform.
func Filter(u *universe.Universe, raw []alphavantage.Row) []model.EarningsRow {
	out := make([]model.EarningsRow, 0, len(raw))
	for _, r := range raw {
		symbol := strings.ToUpper(strings.TrimSpace(r.Symbol))
		if symbol == "" || !u.Contains(symbol) {
			continue
		}

		reportDate := strings.TrimSpace(r.ReportDate)
		if reportDate == "" {
			continue
		}

		var estimate *string
		if e := strings.TrimSpace(r.Estimate); e != "" {
			estimate = &e
		}

		out = append(out, model.EarningsRow{
			Symbol:           symbol,
			Name:             strings.TrimSpace(r.Name),
			ReportDate:       reportDate,
			FiscalDateEnding: strings.TrimSpace(r.FiscalDateEnding),
			Estimate:         estimate,
			Currency:         strings.TrimSpace(r.Currency),
		})
	}
	return out
}
