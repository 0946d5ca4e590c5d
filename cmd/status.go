package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/earnings-cli/internal/model"
	"github.com/sells-group/earnings-cli/internal/pipeline"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache, archive, history, and recent run state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		snap, err := pipeline.ReadSnapshot(cfg.Paths.CacheJSON)
		switch {
		case err != nil:
			fmt.Printf("Live cache : unreadable (%v)\n", err)
		case snap == nil:
			fmt.Printf("Live cache : %s (missing)\n", cfg.Paths.CacheJSON)
		case snap.Kind == model.SnapshotParsed:
			fmt.Printf("Live cache : %s (%d rows)\n", cfg.Paths.CacheJSON, len(snap.Rows))
		default:
			fmt.Printf("Live cache : %s (unparseable, %d bytes)\n", cfg.Paths.CacheJSON, len(snap.Raw))
		}

		fmt.Printf("Archive    : %s (%d snapshots)\n", cfg.Paths.ArchiveDir, countJSONFiles(cfg.Paths.ArchiveDir))
		fmt.Printf("History    : %s (%d dates)\n", cfg.Paths.HistoryDir, countJSONFiles(cfg.Paths.HistoryDir))

		rl := openRunlog()
		if rl == nil {
			return nil
		}
		defer rl.Close() //nolint:errcheck

		entries, err := rl.Recent(ctx, statusLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("\nNo recorded runs.")
			return nil
		}

		fmt.Println("\nRecent runs:")
		for _, e := range entries {
			line := fmt.Sprintf("  %s  %-8s %-8s", e.StartedAt.Format("2006-01-02 15:04:05"), e.Job, e.Status)
			if e.Status == "complete" {
				line += fmt.Sprintf("  raw=%d filtered=%d", e.RawRows, e.FilteredRows)
			} else if e.Error != "" {
				line += "  " + firstLine(e.Error)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func countJSONFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			n++
		}
	}
	return n
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "number of recent runs to show")
	rootCmd.AddCommand(statusCmd)
}
