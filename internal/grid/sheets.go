package grid

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	maxRetries = 8
	maxBackoff = 60 * time.Second
)

// SheetsGrid drives one tab of a Google Sheets spreadsheet.
type SheetsGrid struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	log           zerolog.Logger
	sleep         func(context.Context, time.Duration) error // swapped out in tests
}

func NewSheetsGrid(ctx context.Context, log zerolog.Logger, credentialsFile, spreadsheetID, sheetName string) (*SheetsGrid, error) {
	srv, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	return &SheetsGrid{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		log:           log,
		sleep:         sleepContext,
	}, nil
}

func (g *SheetsGrid) Header(ctx context.Context) ([]string, error) {
	resp, err := g.getValues(ctx, g.sheetName+"!1:1")
	if err != nil {
		return nil, err
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStringRow(resp.Values[0]), nil
}

func (g *SheetsGrid) ReadRows(ctx context.Context) ([][]string, error) {
	resp, err := g.getValues(ctx, g.sheetName+"!A2:Z")
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, v := range resp.Values {
		rows = append(rows, toStringRow(v))
	}
	return rows, nil
}

func (g *SheetsGrid) ReplaceRows(ctx context.Context, header []string, rows [][]string) error {
	// drop the old data region first so a shrinking catalog leaves no
	// stale tail rows behind
	err := g.withRetry(ctx, "clear", func() error {
		_, err := g.service.Spreadsheets.Values.Clear(
			g.spreadsheetID,
			g.sheetName+"!A2:Z",
			&sheets.ClearValuesRequest{},
		).Context(ctx).Do()
		return err
	})
	if err != nil {
		return err
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, toInterfaceRow(header))
	for _, r := range rows {
		values = append(values, toInterfaceRow(r))
	}

	return g.withRetry(ctx, "update", func() error {
		_, err := g.service.Spreadsheets.Values.Update(
			g.spreadsheetID,
			g.sheetName+"!A1",
			&sheets.ValueRange{Values: values},
		).ValueInputOption("RAW").Context(ctx).Do()
		return err
	})
}

// EnsureSheet creates the named tab when the spreadsheet does not have
// it yet, so a fresh document works without manual setup.
func (g *SheetsGrid) EnsureSheet(ctx context.Context) error {
	ss, err := g.service.Spreadsheets.Get(g.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return err
	}
	for _, sh := range ss.Sheets {
		if sh.Properties.Title == g.sheetName {
			return nil
		}
	}
	_, err = g.service.Spreadsheets.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: g.sheetName},
			},
		}},
	}).Context(ctx).Do()
	return err
}

func (g *SheetsGrid) getValues(ctx context.Context, rng string) (*sheets.ValueRange, error) {
	var resp *sheets.ValueRange
	err := g.withRetry(ctx, "get", func() error {
		var err error
		resp, err = g.service.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
		return err
	})
	return resp, err
}

// withRetry backs off exponentially on Sheets rate limiting (429, and
// 403 which the API also uses for quota exhaustion).
func (g *SheetsGrid) withRetry(ctx context.Context, op string, call func() error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = call()
		if err == nil {
			return nil
		}
		gErr, ok := err.(*googleapi.Error)
		if !ok || (gErr.Code != 429 && gErr.Code != 403) {
			return fmt.Errorf("sheets %s: %w", op, err)
		}
		backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		g.log.Warn().Str("op", op).Dur("backoff", backoff).Msg("sheets rate limited, retrying")
		if err := g.sleep(ctx, backoff); err != nil {
			return err
		}
	}
	return fmt.Errorf("sheets %s: gave up after %d retries: %w", op, maxRetries, err)
}

// sleepContext waits out the backoff but wakes up as soon as the
// context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func toStringRow(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if s, ok := v.(string); ok {
			out[i] = s
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func toInterfaceRow(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
