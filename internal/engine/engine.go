// Package engine orchestrates the fetch and push round trips between
// the grid and the sheets-api remote. Every public operation returns a
// Result value; no error escapes to the caller.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bartek5186/sheet2woo/internal/catalog"
	"github.com/bartek5186/sheet2woo/internal/db"
	"github.com/bartek5186/sheet2woo/internal/grid"
	"github.com/bartek5186/sheet2woo/internal/settings"
	"github.com/bartek5186/sheet2woo/internal/token"
	"github.com/bartek5186/sheet2woo/internal/tracker"
	"github.com/bartek5186/sheet2woo/internal/wooapi"
)

var (
	ErrNoRowsSelected = errors.New("select at least one row")
	ErrNoRows         = errors.New("no rows found")
)

// Result is the uniform outcome of every engine operation. Count is the
// number of products written to the grid by a fetch; Updated/Deleted are
// the remote-reported counts of a push.
type Result struct {
	Success bool
	Message string
	Count   int
	Updated int
	Deleted int
}

// Options wires an Engine. NewAPI and Codec have working defaults; DB is
// the optional run log.
type Options struct {
	Log         zerolog.Logger
	Settings    *settings.Store
	Tracker     *tracker.Tracker
	Grid        grid.Grid
	WorkspaceID string
	NewAPI      func(log zerolog.Logger, baseURL string) wooapi.API
	Codec       *token.Codec
	DB          *gorm.DB
}

type Engine struct {
	log         zerolog.Logger
	settings    *settings.Store
	tracker     *tracker.Tracker
	grid        grid.Grid
	workspaceID string
	newAPI      func(log zerolog.Logger, baseURL string) wooapi.API
	codec       *token.Codec
	gdb         *gorm.DB
}

func New(opts Options) *Engine {
	e := &Engine{
		log:         opts.Log,
		settings:    opts.Settings,
		tracker:     opts.Tracker,
		grid:        opts.Grid,
		workspaceID: opts.WorkspaceID,
		newAPI:      opts.NewAPI,
		codec:       opts.Codec,
		gdb:         opts.DB,
	}
	if e.newAPI == nil {
		e.newAPI = func(log zerolog.Logger, baseURL string) wooapi.API {
			return wooapi.NewClient(log, baseURL)
		}
	}
	if e.codec == nil {
		e.codec = token.New()
	}
	return e
}

// Fetch pulls the catalog from the remote and rewrites the grid with it,
// newest product in the first data row. On success the fetched id set is
// snapshotted for later deletion detection.
func (e *Engine) Fetch(ctx context.Context) Result {
	log, opID := e.opLogger("fetch")

	count, err := e.fetch(ctx, log)
	if err != nil {
		log.Error().Err(err).Msg("fetch failed")
		return e.record(opID, "fetch", failure(err))
	}

	log.Info().Int("count", count).Msg("fetch done")
	return e.record(opID, "fetch", Result{
		Success: true,
		Count:   count,
		Message: fmt.Sprintf("fetched %d products", count),
	})
}

func (e *Engine) fetch(ctx context.Context, log zerolog.Logger) (int, error) {
	st, err := e.settings.Load()
	if err != nil {
		return 0, err
	}
	if !st.Configured() {
		return 0, settings.ErrNotConfigured
	}

	// informational only: how much the fetch is about to overwrite
	if rows, err := e.grid.ReadRows(ctx); err != nil {
		log.Warn().Err(err).Msg("could not read current grid rows")
	} else {
		log.Debug().Int("rows", len(rows)).Msg("overwriting grid rows")
	}

	tok, err := e.codec.Issue(e.workspaceID, st.SecretKey)
	if err != nil {
		return 0, err
	}

	products, _, err := e.newAPI(log, st.BaseURL).GetProducts(ctx, tok)
	if err != nil {
		return 0, err
	}

	// newest entries come last from the remote; the grid shows them first
	reverse(products)

	rows := make([][]string, len(products))
	ids := make([]string, 0, len(products))
	for i, p := range products {
		rows[i] = p.ToRow()
		if p.ID != "" {
			ids = append(ids, p.ID)
		}
	}

	if err := e.grid.ReplaceRows(ctx, catalog.HeaderRow(), rows); err != nil {
		return 0, fmt.Errorf("writing grid: %w", err)
	}
	if err := e.tracker.Snapshot(ids); err != nil {
		return 0, err
	}
	return len(products), nil
}

// Push sends the selected grid rows to the remote, together with the ids
// deleted from the grid since the last fetch. Configuration is checked
// first; an empty selection then fails validation.
func (e *Engine) Push(ctx context.Context, selected [][]string) Result {
	log, opID := e.opLogger("push")

	if err := e.requireConfigured(); err != nil {
		log.Warn().Err(err).Msg("push refused")
		return e.record(opID, "push", failure(err))
	}
	if len(selected) == 0 {
		log.Warn().Msg("push with empty selection")
		return e.record(opID, "push", failure(ErrNoRowsSelected))
	}
	return e.record(opID, "push", e.push(ctx, log, selected))
}

// PushAll pushes every data row in the grid. Configuration is checked
// first; an empty grid then fails validation with its own message.
func (e *Engine) PushAll(ctx context.Context) Result {
	log, opID := e.opLogger("push")

	if err := e.requireConfigured(); err != nil {
		log.Warn().Err(err).Msg("push refused")
		return e.record(opID, "push", failure(err))
	}
	rows, err := e.grid.ReadRows(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reading grid for push")
		return e.record(opID, "push", failure(err))
	}
	if len(rows) == 0 {
		log.Warn().Msg("push on empty grid")
		return e.record(opID, "push", failure(ErrNoRows))
	}
	return e.record(opID, "push", e.push(ctx, log, rows))
}

func (e *Engine) requireConfigured() error {
	st, err := e.settings.Load()
	if err != nil {
		return err
	}
	if !st.Configured() {
		return settings.ErrNotConfigured
	}
	return nil
}

func (e *Engine) push(ctx context.Context, log zerolog.Logger, selected [][]string) Result {
	res, err := e.doPush(ctx, log, selected)
	if err != nil {
		log.Error().Err(err).Msg("push failed")
		return failure(err)
	}

	// resynchronize with the authoritative remote state: the store may
	// have normalized prices or rejected individual items
	if _, err := e.fetch(ctx, log); err != nil {
		log.Warn().Err(err).Msg("post-push refetch failed, grid may be stale")
	}

	msg := res.Message
	if msg == "" {
		msg = fmt.Sprintf("pushed %d products, deleted %d", res.Updated, res.Deleted)
	}
	log.Info().Int("updated", res.Updated).Int("deleted", res.Deleted).Msg("push done")
	return Result{Success: true, Message: msg, Updated: res.Updated, Deleted: res.Deleted}
}

func (e *Engine) doPush(ctx context.Context, log zerolog.Logger, selected [][]string) (wooapi.UpdateResult, error) {
	st, err := e.settings.Load()
	if err != nil {
		return wooapi.UpdateResult{}, err
	}
	if !st.Configured() {
		return wooapi.UpdateResult{}, settings.ErrNotConfigured
	}

	// deletions are diffed against the WHOLE grid, not the selection:
	// a row missing from the selection is not a deleted row
	allRows, err := e.grid.ReadRows(ctx)
	if err != nil {
		return wooapi.UpdateResult{}, fmt.Errorf("reading grid: %w", err)
	}
	deleted, err := e.tracker.Diff(catalog.RowIDs(allRows))
	if err != nil {
		return wooapi.UpdateResult{}, err
	}

	products := make([]catalog.Product, 0, len(selected))
	for _, row := range selected {
		products = append(products, catalog.FromRow(row))
	}

	tok, err := e.codec.Issue(e.workspaceID, st.SecretKey)
	if err != nil {
		return wooapi.UpdateResult{}, err
	}

	res, err := e.newAPI(log, st.BaseURL).UpdateProducts(ctx, tok, products, deleted)
	if err != nil {
		return wooapi.UpdateResult{}, err
	}

	// the snapshot is spent: a second push without a fetch in between
	// must not re-report the same deletions
	if err := e.tracker.Clear(); err != nil {
		log.Warn().Err(err).Msg("could not clear deletion snapshot")
	}
	return res, nil
}

// TestConnection verifies the endpoint is reachable and accepts a
// freshly issued token.
func (e *Engine) TestConnection(ctx context.Context) Result {
	log, opID := e.opLogger("test")

	st, err := e.settings.Load()
	if err != nil {
		return e.record(opID, "test", failure(err))
	}
	if !st.Configured() {
		return e.record(opID, "test", failure(settings.ErrNotConfigured))
	}

	tok, err := e.codec.Issue(e.workspaceID, st.SecretKey)
	if err != nil {
		return e.record(opID, "test", failure(err))
	}

	if err := e.newAPI(log, st.BaseURL).TestConnection(ctx, tok); err != nil {
		log.Error().Err(err).Msg("connection test failed")
		return e.record(opID, "test", failure(err))
	}

	log.Info().Msg("connection test ok")
	return e.record(opID, "test", Result{Success: true, Message: "connection ok"})
}

func (e *Engine) opLogger(kind string) (zerolog.Logger, string) {
	opID := uuid.NewString()
	return e.log.With().Str("op", kind).Str("op_id", opID).Logger(), opID
}

// record appends the outcome to the sync_runs table when a database is
// attached, then passes the result through.
func (e *Engine) record(opID, kind string, res Result) Result {
	if e.gdb == nil {
		return res
	}
	run := db.SyncRun{
		OpID:    opID,
		Kind:    kind,
		Success: res.Success,
		Message: res.Message,
		Count:   res.Count,
		Updated: res.Updated,
		Deleted: res.Deleted,
	}
	if err := e.gdb.Create(&run).Error; err != nil {
		e.log.Warn().Err(err).Msg("could not record sync run")
	}
	return res
}

func failure(err error) Result {
	return Result{Success: false, Message: err.Error()}
}

func reverse(products []catalog.Product) {
	for i, j := 0, len(products)-1; i < j; i, j = i+1, j-1 {
		products[i], products[j] = products[j], products[i]
	}
}
