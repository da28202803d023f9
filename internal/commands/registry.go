// internal/commands/registry.go
package commands

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bartek5186/sheet2woo/internal/engine"
	"github.com/bartek5186/sheet2woo/internal/grid"
	"github.com/bartek5186/sheet2woo/internal/scheduler"
	"github.com/bartek5186/sheet2woo/internal/settings"
)

// Deps is everything a command handler may need. Both front-ends (CLI
// and tray) build one Deps and dispatch through the same table.
type Deps struct {
	Log       zerolog.Logger
	Engine    *engine.Engine
	Scheduler *scheduler.Scheduler
	Settings  *settings.Store
	Grid      grid.Grid
	DB        *gorm.DB
}

// Handler executes one named action and returns a line for the operator.
type Handler func(ctx context.Context, d *Deps, args []string) string

var (
	regMu    sync.RWMutex
	registry = map[string]Handler{}
)

func Register(name string, h Handler) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = h
}

func Get(name string) (Handler, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	h, ok := registry[name]
	return h, ok
}

// Names lists the registered actions, sorted, for the help line.
func Names() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Dispatch looks the action up and runs it. Unknown actions produce a
// help message instead of an error.
func Dispatch(ctx context.Context, d *Deps, name string, args []string) string {
	h, ok := Get(name)
	if !ok {
		return "unknown command, try: " + usageLine()
	}
	return h(ctx, d, args)
}
