package universe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "universe.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadWithHeader(t *testing.T) {
	path := writeCSV(t, "name,ticker\nApple Inc,aapl\nMicrosoft, msft \nApple Inc,AAPL\n")

	u, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, u.Tickers())
	assert.Equal(t, 2, u.Len())
	assert.True(t, u.Contains("AAPL"))
	assert.False(t, u.Contains("GOOG"))
}

func TestLoadWithoutHeader(t *testing.T) {
	// No "ticker" column: first column of every row is a candidate
	path := writeCSV(t, "msft\naapl\ngoog\n")

	u, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "GOOG", "MSFT"}, u.Tickers())
}

func TestLoadDropsPlaceholders(t *testing.T) {
	path := writeCSV(t, "ticker\nAAPL\nTICKER\n...\n\nmsft\n")

	u, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, u.Tickers())
	assert.NotContains(t, u.Tickers(), "TICKER")
	assert.NotContains(t, u.Tickers(), "...")
}

func TestLoadHeaderTickerNotFirstColumn(t *testing.T) {
	path := writeCSV(t, "Name,Sector,Ticker\nApple,Tech,AAPL\nMicrosoft,Tech,MSFT\n")

	u, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, u.Tickers())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeCSV(t, "")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyFile))
}

func TestLoadNoSurvivingTickers(t *testing.T) {
	path := writeCSV(t, "ticker\nTICKER\n...\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoTickers))
}
