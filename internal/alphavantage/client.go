// Package alphavantage fetches the bulk EARNINGS_CALENDAR dataset and
// classifies provider responses (CSV data vs. rate-limit/error notes).
package alphavantage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/earnings-cli/internal/fetcher"
)

// Row is one raw record from the EARNINGS_CALENDAR CSV, unfiltered.
type Row struct {
	Symbol           string `csv:"symbol"`
	Name             string `csv:"name"`
	ReportDate       string `csv:"reportDate"`
	FiscalDateEnding string `csv:"fiscalDateEnding"`
	Estimate         string `csv:"estimate"`
	Currency         string `csv:"currency"`
}

// ErrEmptyResponse indicates a whitespace-only provider body.
var ErrEmptyResponse = eris.New("alphavantage: empty response from provider")

// ErrSchema indicates the CSV header lacks the symbol/reportDate columns.
var ErrSchema = eris.New("alphavantage: csv missing symbol/reportDate columns")

// ErrInsufficientData indicates the raw row count is below the configured
// minimum and the response is treated as a provider malfunction.
var ErrInsufficientData = eris.New("alphavantage: insufficient raw rows")

// ProviderError is a structured error/advisory body returned in place of CSV,
// typically a rate-limit note.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("alphavantage: provider error: %s", e.Message)
}

// Known fields AlphaVantage uses for advisory/error messages.
type errorBody struct {
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
	Information  string `json:"Information"`
}

// Canonical calendar column names, used to normalize header case.
var canonicalColumns = []string{"symbol", "name", "reportDate", "fiscalDateEnding", "estimate", "currency"}

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Horizon    string
	MinRawRows int
}

// Client performs the single bulk calendar request per run.
// Retry and rate-limit policy live in the fetcher, not here.
type Client struct {
	fetcher fetcher.Fetcher
	opts    Options
}

// NewClient creates a calendar client on top of the given fetcher.
func NewClient(f fetcher.Fetcher, opts Options) *Client {
	return &Client{fetcher: f, opts: opts}
}

func (c *Client) calendarURL() string {
	q := url.Values{}
	q.Set("function", "EARNINGS_CALENDAR")
	q.Set("horizon", c.opts.Horizon)
	q.Set("apikey", c.opts.APIKey)
	q.Set("datatype", "csv")
	return c.opts.BaseURL + "?" + q.Encode()
}

// Calendar fetches the bulk earnings calendar once and returns its raw rows.
func (c *Client) Calendar(ctx context.Context) ([]Row, error) {
	zap.L().Info("requesting earnings calendar",
		zap.String("horizon", c.opts.Horizon),
	)

	body, err := c.fetcher.Download(ctx, c.calendarURL())
	if err != nil {
		return nil, eris.Wrap(err, "alphavantage: download calendar")
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrap(err, "alphavantage: read response")
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, ErrEmptyResponse
	}

	// A JSON object body is a rate-limit note or error advisory, never data.
	if strings.HasPrefix(text, "{") {
		return nil, classifyProviderError(text)
	}

	rows, err := parseCalendarCSV(text)
	if err != nil {
		return nil, err
	}

	zap.L().Info("received calendar rows", zap.Int("rows", len(rows)))

	if len(rows) < c.opts.MinRawRows {
		return nil, eris.Wrapf(ErrInsufficientData, "got %d raw rows, want at least %d", len(rows), c.opts.MinRawRows)
	}

	return rows, nil
}

func classifyProviderError(text string) error {
	var body errorBody
	msg := text
	if err := json.Unmarshal([]byte(text), &body); err == nil {
		switch {
		case body.Note != "":
			msg = body.Note
		case body.ErrorMessage != "":
			msg = body.ErrorMessage
		case body.Information != "":
			msg = body.Information
		}
	}
	return &ProviderError{Message: msg}
}

func parseCalendarCSV(text string) ([]Row, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	rawHeader, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "alphavantage: read csv header")
	}

	header := normalizeHeader(rawHeader)
	seen := make(map[string]bool, len(header))
	for _, col := range header {
		seen[col] = true
	}
	if !seen["symbol"] || !seen["reportDate"] {
		return nil, ErrSchema
	}

	dec, err := csvutil.NewDecoder(reader, header...)
	if err != nil {
		return nil, eris.Wrap(err, "alphavantage: create csv decoder")
	}

	var rows []Row
	for {
		var row Row
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "alphavantage: decode csv row")
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// normalizeHeader maps header cells onto canonical column names
// case-insensitively, so providers emitting e.g. "reportdate" still decode.
func normalizeHeader(raw []string) []string {
	out := make([]string, len(raw))
	for i, cell := range raw {
		cell = strings.TrimSpace(cell)
		out[i] = cell
		for _, canon := range canonicalColumns {
			if strings.EqualFold(cell, canon) {
				out[i] = canon
				break
			}
		}
	}
	return out
}
