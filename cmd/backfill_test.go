//go:build !integration

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackfillCmd_RunE_WritesDatedFiles(t *testing.T) {
	// Report dates relative to now so they land inside the trailing window.
	d1 := time.Now().UTC().AddDate(0, 0, -5).Format("2006-01-02")
	d2 := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	body := fmt.Sprintf("symbol,name,reportDate,fiscalDateEnding,estimate,currency\nAAPL,Apple Inc,%s,2024-12-31,1.5,USD\nMSFT,Microsoft Corp,%s,2024-12-31,2.9,USD\n", d1, d2)
	setupTestEnv(t, body)

	backfillCmd.SetContext(context.Background())
	defer backfillCmd.SetContext(nil)

	require.NoError(t, backfillCmd.RunE(backfillCmd, nil))

	_, err := os.Stat(filepath.Join(cfg.Paths.HistoryDir, "earnings_"+d1+".json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Paths.HistoryDir, "earnings_"+d2+".json"))
	assert.NoError(t, err)

	// The live cache is never touched by backfill
	_, err = os.Stat(cfg.Paths.CacheJSON)
	assert.True(t, os.IsNotExist(err))
}

func TestBackfillCmd_RunE_SecondRunIsNoOp(t *testing.T) {
	d := time.Now().UTC().AddDate(0, 0, -3).Format("2006-01-02")
	body := fmt.Sprintf("symbol,name,reportDate,fiscalDateEnding,estimate,currency\nAAPL,Apple Inc,%s,2024-12-31,1.5,USD\nMSFT,Microsoft Corp,%s,2024-12-31,,USD\n", d, d)
	setupTestEnv(t, body)

	backfillCmd.SetContext(context.Background())
	defer backfillCmd.SetContext(nil)

	require.NoError(t, backfillCmd.RunE(backfillCmd, nil))

	path := filepath.Join(cfg.Paths.HistoryDir, "earnings_"+d+".json")
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, backfillCmd.RunE(backfillCmd, nil))

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
