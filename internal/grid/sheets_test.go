package grid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func retryGrid(sleeps *[]time.Duration) *SheetsGrid {
	return &SheetsGrid{
		log: zerolog.Nop(),
		sleep: func(_ context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return nil
		},
	}
}

func TestWithRetry_RecoversFromRateLimit(t *testing.T) {
	var sleeps []time.Duration
	g := retryGrid(&sleeps)

	calls := 0
	err := g.withRetry(context.Background(), "get", func() error {
		calls++
		if calls <= 3 {
			return &googleapi.Error{Code: 429, Message: "rate limit"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}, sleeps)
}

func TestWithRetry_403AlsoRetried(t *testing.T) {
	// the Sheets API reports quota exhaustion as 403
	var sleeps []time.Duration
	g := retryGrid(&sleeps)

	calls := 0
	err := g.withRetry(context.Background(), "update", func() error {
		calls++
		if calls == 1 {
			return &googleapi.Error{Code: 403, Message: "quota"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{1 * time.Second}, sleeps)
}

func TestWithRetry_NonRetryableErrorReturnsImmediately(t *testing.T) {
	var sleeps []time.Duration
	g := retryGrid(&sleeps)

	tests := []struct {
		name string
		err  error
	}{
		{"plain error", errors.New("boom")},
		{"googleapi 404", &googleapi.Error{Code: 404, Message: "not found"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := g.withRetry(context.Background(), "get", func() error {
				calls++
				return tt.err
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "sheets get:")
			assert.Equal(t, 1, calls)
		})
	}
	assert.Empty(t, sleeps)
}

func TestWithRetry_ExhaustionAndBackoffCap(t *testing.T) {
	var sleeps []time.Duration
	g := retryGrid(&sleeps)

	calls := 0
	err := g.withRetry(context.Background(), "get", func() error {
		calls++
		return &googleapi.Error{Code: 429, Message: "rate limit"}
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gave up after 8 retries")
	assert.Equal(t, maxRetries, calls)

	// 1s,2s,4s,... doubling, capped at 60s from the 7th attempt on
	require.Len(t, sleeps, maxRetries)
	want := []time.Duration{
		1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 32 * time.Second, maxBackoff, maxBackoff,
	}
	assert.Equal(t, want, sleeps)
}

func TestWithRetry_CancelDuringBackoff(t *testing.T) {
	g := &SheetsGrid{log: zerolog.Nop(), sleep: sleepContext}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	start := time.Now()
	err := g.withRetry(ctx, "get", func() error {
		calls++
		return &googleapi.Error{Code: 429, Message: "rate limit"}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second, "cancel must not wait the backoff out")
}

func TestToStringRow(t *testing.T) {
	// the Values API hands numbers back as float64
	got := toStringRow([]interface{}{"1023", float64(7), "Mug", true})
	assert.Equal(t, []string{"1023", "7", "Mug", "true"}, got)
}

// --- full adapter over a fake Sheets endpoint ---

type fakeSheets struct {
	t       *testing.T
	rows    [][]interface{}
	header  []interface{}
	ops     []string
	updated [][]interface{}
}

func (f *fakeSheets) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
			f.ops = append(f.ops, "clear")
			_, _ = w.Write([]byte(`{}`))

		case r.Method == http.MethodPut:
			f.ops = append(f.ops, "update")
			var body struct {
				Values [][]interface{} `json:"values"`
			}
			require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
			f.updated = body.Values
			_, _ = w.Write([]byte(`{}`))

		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
			f.ops = append(f.ops, "get")
			var vals [][]interface{}
			if strings.Contains(r.URL.Path, "!1:1") {
				if f.header != nil {
					vals = [][]interface{}{f.header}
				}
			} else {
				vals = f.rows
			}
			require.NoError(f.t, json.NewEncoder(w).Encode(sheets.ValueRange{Values: vals}))

		default:
			f.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newFakeGrid(t *testing.T) (*SheetsGrid, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{t: t}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	srv, err := sheets.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(server.URL))
	require.NoError(t, err)

	return &SheetsGrid{
		service:       srv,
		spreadsheetID: "sheet-1",
		sheetName:     "Products",
		log:           zerolog.Nop(),
		sleep:         sleepContext,
	}, fake
}

func TestSheetsGrid_ReadRows(t *testing.T) {
	g, fake := newFakeGrid(t)
	fake.rows = [][]interface{}{
		{"1", "simple", "", "Mug"},
		{"2", "simple", "", "Plate"},
	}

	rows, err := g.ReadRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Plate", rows[1][3])
}

func TestSheetsGrid_Header(t *testing.T) {
	g, fake := newFakeGrid(t)

	header, err := g.Header(context.Background())
	require.NoError(t, err)
	assert.Nil(t, header) // empty sheet

	fake.header = []interface{}{"Product ID", "Type"}
	header, err = g.Header(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Product ID", "Type"}, header)
}

func TestSheetsGrid_ReplaceRows_ClearsThenWrites(t *testing.T) {
	g, fake := newFakeGrid(t)

	err := g.ReplaceRows(context.Background(),
		[]string{"Product ID", "Name"},
		[][]string{{"3", "Bowl"}, {"1", "Mug"}})
	require.NoError(t, err)

	// stale tail rows must be gone before the new data lands
	assert.Equal(t, []string{"clear", "update"}, fake.ops)

	require.Len(t, fake.updated, 3)
	assert.Equal(t, []interface{}{"Product ID", "Name"}, fake.updated[0])
	assert.Equal(t, []interface{}{"3", "Bowl"}, fake.updated[1])
	assert.Equal(t, []interface{}{"1", "Mug"}, fake.updated[2])
}
