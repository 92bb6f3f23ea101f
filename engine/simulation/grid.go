package simulation

import (
	"github.com/Carmen-Shannon/oxy-flock/common"
)

// Grid is a fixed N x N array of Vec4 cells, one cell per simulated entity.
// The dimensions never change after NewGrid.
type Grid struct {
	size  int
	cells []common.Vec4
}

// NewGrid allocates a zeroed size x size grid.
//
// Parameters:
//   - size: the edge length (must be > 0)
//
// Returns:
//   - *Grid: the new grid
func NewGrid(size int) *Grid {
	if size <= 0 {
		panic("simulation: NewGrid requires a positive size")
	}
	return &Grid{
		size:  size,
		cells: make([]common.Vec4, size*size),
	}
}

// Size returns the edge length N.
func (g *Grid) Size() int {
	return g.size
}

// Len returns the number of cells (N * N).
func (g *Grid) Len() int {
	return len(g.cells)
}

// Index converts a cell coordinate to a flat index. Coordinates wrap around the
// edges (repeat addressing) so any integer pair maps to a valid cell.
//
// Parameters:
//   - x: the column
//   - y: the row
//
// Returns:
//   - int: the flat cell index
func (g *Grid) Index(x, y int) int {
	x %= g.size
	if x < 0 {
		x += g.size
	}
	y %= g.size
	if y < 0 {
		y += g.size
	}
	return y*g.size + x
}

// At returns the cell at column x, row y (with repeat wrapping).
func (g *Grid) At(x, y int) common.Vec4 {
	return g.cells[g.Index(x, y)]
}

// Cell returns the cell at flat index i.
func (g *Grid) Cell(i int) common.Vec4 {
	return g.cells[i]
}

// Set writes the cell at flat index i.
func (g *Grid) Set(i int, v common.Vec4) {
	g.cells[i] = v
}

// Cells returns the backing cell slice. Callers must treat it as read-only.
func (g *Grid) Cells() []common.Vec4 {
	return g.cells
}

// Reference returns the normalized texture coordinate of cell i, the stable lookup
// key an entity uses to find itself in every channel.
//
// Parameters:
//   - i: the flat cell index
//
// Returns:
//   - float32: u in [0, 1)
//   - float32: v in [0, 1)
func (g *Grid) Reference(i int) (float32, float32) {
	n := float32(g.size)
	return float32(i%g.size) / n, float32(i/g.size) / n
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{size: g.size, cells: make([]common.Vec4, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// copyFrom overwrites g with src. Both grids must have the same size.
func (g *Grid) copyFrom(src *Grid) {
	copy(g.cells, src.cells)
}
