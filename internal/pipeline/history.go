package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/earnings-cli/internal/model"
)

const reportDateLayout = "2006-01-02"

// BackfillSummary counts what the backfill run did.
type BackfillSummary struct {
	Created         int
	SkippedExisting int
	OutOfWindow     int
	InvalidDates    int
}

// Backfiller writes one dated history file per reportDate within the trailing
// window. Existing files are never overwritten, so re-running only fills gaps.
// Independent of the live cache and the archive.
type Backfiller struct {
	HistoryDir string
	WindowDays int
	Now        func() time.Time // defaults to time.Now
}

func (b *Backfiller) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Run groups rows by reportDate and writes missing history files for dates in
// [today − WindowDays, today].
func (b *Backfiller) Run(rows []model.EarningsRow) (BackfillSummary, error) {
	var sum BackfillSummary

	if err := os.MkdirAll(b.HistoryDir, 0755); err != nil {
		return sum, eris.Wrapf(err, "history: create dir %s", b.HistoryDir)
	}

	grouped := make(map[string][]model.EarningsRow)
	for _, r := range rows {
		grouped[r.ReportDate] = append(grouped[r.ReportDate], r)
	}

	dates := make([]string, 0, len(grouped))
	for d := range grouped {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	nowUTC := b.now().UTC()
	today := time.Date(nowUTC.Year(), nowUTC.Month(), nowUTC.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, -b.WindowDays)

	for _, dateStr := range dates {
		d, err := time.Parse(reportDateLayout, dateStr)
		if err != nil {
			zap.L().Warn("skipping invalid reportDate", zap.String("reportDate", dateStr))
			sum.InvalidDates++
			continue
		}

		if d.After(today) || d.Before(cutoff) {
			sum.OutOfWindow++
			continue
		}

		path := filepath.Join(b.HistoryDir, "earnings_"+dateStr+".json")
		if _, err := os.Stat(path); err == nil {
			zap.L().Info("history file exists, skipping", zap.String("path", path))
			sum.SkippedExisting++
			continue
		} else if !os.IsNotExist(err) {
			return sum, eris.Wrapf(err, "history: stat %s", path)
		}

		data, err := json.Marshal(grouped[dateStr])
		if err != nil {
			return sum, eris.Wrapf(err, "history: marshal rows for %s", dateStr)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return sum, eris.Wrapf(err, "history: write %s", path)
		}

		zap.L().Info("wrote history file",
			zap.String("path", path),
			zap.Int("rows", len(grouped[dateStr])),
		)
		sum.Created++
	}

	return sum, nil
}
