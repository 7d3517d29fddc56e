package testhelpers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/managementproperties/mono-repo/backend/shared/go-models"
	"github.com/managementproperties/mono-repo/backend/shared/go-repositories"
)

// MemoryGrid is an in-memory repositories.Grid. It behaves like a sheet
// tab: trailing empty rows are not returned and deleting a row shifts the
// ones below it up.
type MemoryGrid struct {
	mu   sync.Mutex
	rows [][]any
	err  error
}

var _ repositories.Grid = (*MemoryGrid)(nil)

// NewMemoryGrid seeds the grid with rows, header first.
func NewMemoryGrid(rows ...[]any) *MemoryGrid {
	g := &MemoryGrid{}
	for _, r := range rows {
		g.rows = append(g.rows, append([]any(nil), r...))
	}
	return g
}

// NewListingsGrid returns a grid holding only the standard listings header.
func NewListingsGrid() *MemoryGrid {
	header := make([]any, len(models.SheetHeader))
	for i, h := range models.SheetHeader {
		header[i] = h
	}
	return NewMemoryGrid(header)
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (g *MemoryGrid) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

// Rows returns a copy of the stored cells.
func (g *MemoryGrid) Rows() [][]any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.copyRows()
}

func (g *MemoryGrid) copyRows() [][]any {
	last := len(g.rows)
	for last > 0 && rowIsEmpty(g.rows[last-1]) {
		last--
	}
	out := make([][]any, last)
	for i := 0; i < last; i++ {
		out[i] = append([]any(nil), g.rows[i]...)
	}
	return out
}

func (g *MemoryGrid) Values(ctx context.Context) ([][]any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.copyRows(), nil
}

func (g *MemoryGrid) Update(ctx context.Context, rng string, values [][]any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}

	start := strings.SplitN(rng, ":", 2)[0]
	col, row, err := repositories.ParseCellRef(start)
	if err != nil {
		return err
	}
	for r, cells := range values {
		for c, v := range cells {
			g.set(row+r, col+c, v)
		}
	}
	return nil
}

func (g *MemoryGrid) set(row, col int, v any) {
	for len(g.rows) < row {
		g.rows = append(g.rows, nil)
	}
	cells := g.rows[row-1]
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = v
	g.rows[row-1] = cells
}

func (g *MemoryGrid) Append(ctx context.Context, row []any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.rows = append(g.copyRows(), append([]any(nil), row...))
	return nil
}

func (g *MemoryGrid) DeleteRow(ctx context.Context, row int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	if row < 1 || row > len(g.rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	g.rows = append(g.rows[:row-1], g.rows[row:]...)
	return nil
}

func rowIsEmpty(r []any) bool {
	for _, v := range r {
		if strings.TrimSpace(models.CellString(v)) != "" {
			return false
		}
	}
	return true
}
