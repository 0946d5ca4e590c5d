package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/earnings-cli/internal/model"
)

// ErrArchival indicates the previous cache could not be snapshotted into the
// archive; the live cache is never overwritten in that case.
var ErrArchival = eris.New("cache: archive previous snapshot")

// archiveTimestampLayout yields compact, lexicographically sortable UTC names.
const archiveTimestampLayout = "20060102T150405Z"

// CacheWriter atomically replaces the live cache, archiving the prior
// snapshot first.
type CacheWriter struct {
	CachePath  string
	ArchiveDir string
	Now        func() time.Time // defaults to time.Now
}

func (w *CacheWriter) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// ReadSnapshot reads the live cache at path. A decode failure is not fatal:
// the bytes are kept verbatim so the archive never skips a prior snapshot.
// Returns nil when no cache file exists.
func ReadSnapshot(path string) (*model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "cache: read %s", path)
	}

	var rows []model.EarningsRow
	if err := json.Unmarshal(data, &rows); err != nil {
		zap.L().Warn("prior cache did not parse, archiving raw bytes",
			zap.String("path", path),
			zap.Error(err),
		)
		return &model.Snapshot{Kind: model.SnapshotRaw, Raw: data}, nil
	}
	return &model.Snapshot{Kind: model.SnapshotParsed, Rows: rows, Raw: data}, nil
}

// Write archives the existing live cache (if any) and then overwrites it with
// the new rows. Archival failures abort before the overwrite so the archival
// trail is never broken.
func (w *CacheWriter) Write(rows []model.EarningsRow) error {
	snap, err := ReadSnapshot(w.CachePath)
	if err != nil {
		return eris.Wrap(ErrArchival, err.Error())
	}

	if snap != nil {
		if err := w.archive(snap); err != nil {
			return err
		}
	}

	if rows == nil {
		rows = []model.EarningsRow{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "cache: marshal rows")
	}
	if err := os.WriteFile(w.CachePath, data, 0644); err != nil {
		return eris.Wrapf(err, "cache: write %s", w.CachePath)
	}

	zap.L().Info("wrote live cache",
		zap.String("path", w.CachePath),
		zap.Int("rows", len(rows)),
	)
	return nil
}

// archive writes the prior snapshot verbatim under a UTC-timestamped name.
func (w *CacheWriter) archive(snap *model.Snapshot) error {
	if err := os.MkdirAll(w.ArchiveDir, 0755); err != nil {
		return eris.Wrap(ErrArchival, err.Error())
	}

	name := "earnings_" + w.now().UTC().Format(archiveTimestampLayout) + ".json"
	path := filepath.Join(w.ArchiveDir, name)
	if err := os.WriteFile(path, snap.Raw, 0644); err != nil {
		return eris.Wrap(ErrArchival, err.Error())
	}

	zap.L().Info("archived previous cache",
		zap.String("path", path),
		zap.String("kind", string(snap.Kind)),
	)
	return nil
}
