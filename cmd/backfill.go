package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/earnings-cli/internal/pipeline"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backfill per-date history files",
	Long: `Fetches the bulk earnings calendar once, filters it to the universe,
groups rows by reportDate, and writes one dated history file per date within
the trailing window. Existing files are never overwritten, so re-running only
fills gaps. Does not touch the live cache or the archive.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rl := openRunlog()
		if rl != nil {
			defer rl.Close() //nolint:errcheck
		}
		runID := journalStart(ctx, rl, "backfill")

		res, err := loadAndFetch(ctx)
		if err != nil {
			journalFail(ctx, rl, runID, err)
			return eris.Wrap(err, "backfill")
		}

		backfiller := &pipeline.Backfiller{
			HistoryDir: cfg.Paths.HistoryDir,
			WindowDays: cfg.Backfill.WindowDays,
		}
		sum, err := backfiller.Run(res.Filtered)
		if err != nil {
			journalFail(ctx, rl, runID, err)
			return eris.Wrap(err, "backfill")
		}

		journalComplete(ctx, rl, runID, res.RawCount, len(res.Filtered))

		fmt.Println("Backfill summary:")
		fmt.Printf("  New history files created : %d\n", sum.Created)
		fmt.Printf("  Existing files skipped    : %d\n", sum.SkippedExisting)
		fmt.Printf("  Outside %d-day window     : %d\n", cfg.Backfill.WindowDays, sum.OutOfWindow)
		if sum.InvalidDates > 0 {
			fmt.Printf("  Invalid report dates      : %d\n", sum.InvalidDates)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backfillCmd)
}
