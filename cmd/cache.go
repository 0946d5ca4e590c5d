package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/earnings-cli/internal/pipeline"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Build the live earnings cache",
	Long: `Fetches the bulk earnings calendar once, filters it to the universe,
and replaces the live cache JSON after archiving the prior snapshot.

A failed sanity check (or any earlier failure) leaves the live cache and the
archive completely untouched, so the front-end keeps serving the last
known-good data.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rl := openRunlog()
		if rl != nil {
			defer rl.Close() //nolint:errcheck
		}
		runID := journalStart(ctx, rl, "cache")

		res, err := loadAndFetch(ctx)
		if err != nil {
			journalFail(ctx, rl, runID, err)
			return eris.Wrap(err, "cache")
		}

		gate := pipeline.Gate{
			MinRawRows:      cfg.Gate.MinRawRows,
			MinFilteredRows: cfg.Gate.MinFilteredRows,
		}
		if err := gate.Check(res.RawCount, len(res.Filtered)); err != nil {
			journalFail(ctx, rl, runID, err)
			return eris.Wrap(err, "cache: sanity check")
		}

		writer := &pipeline.CacheWriter{
			CachePath:  cfg.Paths.CacheJSON,
			ArchiveDir: cfg.Paths.ArchiveDir,
		}
		if err := writer.Write(res.Filtered); err != nil {
			journalFail(ctx, rl, runID, err)
			return eris.Wrap(err, "cache")
		}

		journalComplete(ctx, rl, runID, res.RawCount, len(res.Filtered))
		fmt.Printf("Wrote %d rows to %s\n", len(res.Filtered), cfg.Paths.CacheJSON)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}
