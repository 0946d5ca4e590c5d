// Package universe loads the fixed ticker watchlist from a CSV file.
package universe

import (
	"encoding/csv"
	"os"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// Placeholder cells that must never become tickers.
var placeholderTokens = map[string]bool{
	"TICKER": true,
	"...":    true,
}

// Universe is the sorted, deduplicated set of ticker symbols the job cares about.
type Universe struct {
	tickers []string
	members map[string]bool
}

// ErrEmptyFile indicates the universe CSV had zero rows.
var ErrEmptyFile = eris.New("universe: csv is empty")

// ErrNoTickers indicates no valid tickers survived normalization.
var ErrNoTickers = eris.New("universe: no tickers found in csv")

// Load reads the universe CSV at path. A header row is detected by a
// case-insensitive "ticker" column; without one, column 0 of every row is the
// ticker. Cells are trimmed and uppercased; empty cells and placeholder tokens
// are discarded.
func Load(path string) (*Universe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "universe: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow variable fields
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "universe: read %s", path)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	tickerIdx := 0
	start := 0
	for i, cell := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(cell), "ticker") {
			tickerIdx = i
			start = 1
			break
		}
	}

	members := make(map[string]bool)
	for _, row := range rows[start:] {
		if tickerIdx >= len(row) {
			continue
		}
		t := strings.ToUpper(strings.TrimSpace(row[tickerIdx]))
		if t == "" || placeholderTokens[t] {
			continue
		}
		members[t] = true
	}
	if len(members) == 0 {
		return nil, ErrNoTickers
	}

	tickers := make([]string, 0, len(members))
	for t := range members {
		tickers = append(tickers, t)
	}
	slices.Sort(tickers)

	return &Universe{tickers: tickers, members: members}, nil
}

// Contains reports whether the uppercased symbol is a universe member.
func (u *Universe) Contains(symbol string) bool {
	return u.members[symbol]
}

// Tickers returns the members in lexicographic order.
func (u *Universe) Tickers() []string {
	return u.tickers
}

// Len returns the number of members.
func (u *Universe) Len() int {
	return len(u.tickers)
}
