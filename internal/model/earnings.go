// Package model defines the earnings calendar domain types shared across the CLI.
package model

// EarningsRow is one upcoming earnings report for a universe ticker.
// JSON keys match what the static front-end reads from earnings_cache.json.
type EarningsRow struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	ReportDate       string  `json:"reportDate"`
	FiscalDateEnding string  `json:"fiscalDateEnding"`
	Estimate         *string `json:"estimate"`
	Currency         string  `json:"currency"`
}

// SnapshotKind discriminates what the archive writer can round-trip.
type SnapshotKind string

const (
	// SnapshotParsed means the prior cache decoded as a row array.
	SnapshotParsed SnapshotKind = "parsed"
	// SnapshotRaw means the prior cache did not parse; bytes are kept verbatim.
	SnapshotRaw SnapshotKind = "raw"
)

// Snapshot is the previous live cache as read back before archival.
// Exactly one of Rows/Raw is populated, per Kind.
type Snapshot struct {
	Kind SnapshotKind
	Rows []EarningsRow
	Raw  []byte
}
