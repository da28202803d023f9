package commands

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartek5186/sheet2woo/internal/catalog"
	"github.com/bartek5186/sheet2woo/internal/db"
	"github.com/bartek5186/sheet2woo/internal/engine"
	"github.com/bartek5186/sheet2woo/internal/grid"
	"github.com/bartek5186/sheet2woo/internal/kv"
	"github.com/bartek5186/sheet2woo/internal/settings"
	"github.com/bartek5186/sheet2woo/internal/tracker"
	"github.com/bartek5186/sheet2woo/internal/wooapi"
)

type fakeAPI struct {
	products    []catalog.Product
	gotProducts []catalog.Product
	gotDeleted  []string
}

func (f *fakeAPI) GetProducts(ctx context.Context, tok string) ([]catalog.Product, string, error) {
	return f.products, "ok", nil
}

func (f *fakeAPI) UpdateProducts(ctx context.Context, tok string, products []catalog.Product, deletedIDs []string) (wooapi.UpdateResult, error) {
	f.gotProducts = products
	f.gotDeleted = deletedIDs
	return wooapi.UpdateResult{Message: "saved", Updated: len(products), Deleted: len(deletedIDs)}, nil
}

func (f *fakeAPI) TestConnection(ctx context.Context, tok string) error { return nil }

func newTestDeps(t *testing.T) (*Deps, *fakeAPI) {
	t.Helper()

	h, err := db.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, h.Migrate())

	api := &fakeAPI{}
	store := settings.NewStore(kv.UserScope(h.DB, "tester"))
	g := grid.NewMemoryGrid()
	eng := engine.New(engine.Options{
		Log:         zerolog.Nop(),
		Settings:    store,
		Tracker:     tracker.New(kv.DocumentScope(h.DB, "sheet-1")),
		Grid:        g,
		WorkspaceID: "sheet-1",
		NewAPI:      func(zerolog.Logger, string) wooapi.API { return api },
		DB:          h.DB,
	})

	return &Deps{
		Log:      zerolog.Nop(),
		Engine:   eng,
		Settings: store,
		Grid:     g,
		DB:       h.DB,
	}, api
}

func TestDispatch_UnknownCommand(t *testing.T) {
	d, _ := newTestDeps(t)
	out := Dispatch(context.Background(), d, "frobnicate", nil)
	assert.Contains(t, out, "unknown command")
	assert.Contains(t, out, "fetch")
}

func TestSetURLAndSecretThenConfig(t *testing.T) {
	d, _ := newTestDeps(t)
	ctx := context.Background()

	out := Dispatch(ctx, d, "config", nil)
	assert.Contains(t, out, "not configured")

	assert.Equal(t, "remote URL saved", Dispatch(ctx, d, "set-url", []string{"https://shop.example.com"}))
	assert.Equal(t, "secret key saved", Dispatch(ctx, d, "set-secret", []string{"super-secret"}))

	out = Dispatch(ctx, d, "config", nil)
	assert.Contains(t, out, "https://shop.example.com")
	assert.NotContains(t, out, "super-secret") // secret stays masked
}

func TestFetchCommand(t *testing.T) {
	d, api := newTestDeps(t)
	ctx := context.Background()

	Dispatch(ctx, d, "set-url", []string{"https://shop.example.com"})
	Dispatch(ctx, d, "set-secret", []string{"k"})

	api.products = []catalog.Product{{ID: "1", Name: "Mug"}, {ID: "2", Name: "Plate"}}
	out := Dispatch(ctx, d, "fetch", nil)
	assert.Equal(t, "fetched 2 products", out)

	rows, err := d.Grid.ReadRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[0][catalog.ColumnID])
}

func TestPushCommand_SelectsByID(t *testing.T) {
	d, api := newTestDeps(t)
	ctx := context.Background()

	Dispatch(ctx, d, "set-url", []string{"https://shop.example.com"})
	Dispatch(ctx, d, "set-secret", []string{"k"})

	api.products = []catalog.Product{{ID: "1", Name: "Mug"}, {ID: "2", Name: "Plate"}, {ID: "3", Name: "Bowl"}}
	require.Equal(t, "fetched 3 products", Dispatch(ctx, d, "fetch", nil))

	out := Dispatch(ctx, d, "push", []string{"2"})
	assert.Equal(t, "saved", out)
	require.Len(t, api.gotProducts, 1)
	assert.Equal(t, "2", api.gotProducts[0].ID)
	assert.Empty(t, api.gotDeleted)
}

func TestPushCommand_FailsOnUnknownSelection(t *testing.T) {
	d, api := newTestDeps(t)
	ctx := context.Background()

	Dispatch(ctx, d, "set-url", []string{"https://shop.example.com"})
	Dispatch(ctx, d, "set-secret", []string{"k"})
	api.products = []catalog.Product{{ID: "1"}}
	Dispatch(ctx, d, "fetch", nil)

	out := Dispatch(ctx, d, "push", []string{"does-not-exist"})
	assert.Equal(t, "push failed: select at least one row", out)
}

func TestStatusCommand_ListsRecentRuns(t *testing.T) {
	d, api := newTestDeps(t)
	ctx := context.Background()

	Dispatch(ctx, d, "set-url", []string{"https://shop.example.com"})
	Dispatch(ctx, d, "set-secret", []string{"k"})
	api.products = []catalog.Product{{ID: "1"}}
	Dispatch(ctx, d, "fetch", nil)

	out := Dispatch(ctx, d, "status", nil)
	assert.Contains(t, out, "auto-fetch: stopped")
	assert.Contains(t, out, "fetch ok")
}
