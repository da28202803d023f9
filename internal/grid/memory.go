package grid

import (
	"context"
	"sync"
)

// MemoryGrid is an in-process Grid used by tests and by the engine's own
// package tests. Safe for concurrent use.
type MemoryGrid struct {
	mu     sync.Mutex
	header []string
	rows   [][]string
}

func NewMemoryGrid() *MemoryGrid {
	return &MemoryGrid{}
}

func (g *MemoryGrid) Header(ctx context.Context) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return copyRow(g.header), nil
}

func (g *MemoryGrid) ReadRows(ctx context.Context) ([][]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([][]string, len(g.rows))
	for i, r := range g.rows {
		out[i] = copyRow(r)
	}
	return out, nil
}

func (g *MemoryGrid) ReplaceRows(ctx context.Context, header []string, rows [][]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.header = copyRow(header)
	g.rows = make([][]string, len(rows))
	for i, r := range rows {
		g.rows[i] = copyRow(r)
	}
	return nil
}

// Seed sets the grid content directly, bypassing the Grid interface.
func (g *MemoryGrid) Seed(header []string, rows [][]string) {
	_ = g.ReplaceRows(context.Background(), header, rows)
}

func copyRow(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
