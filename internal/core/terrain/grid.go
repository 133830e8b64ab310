package terrain

import (
	"errors"
	"fmt"
)

var ErrInvalidGrid = errors.New("invalid terrain grid")

// Grid is a row-major terrain map addressed by integer cell coordinates
type Grid struct {
	width  int
	height int
	cells  []Kind
}

// NewGrid creates a grid filled with fill
func NewGrid(width, height int, fill Kind) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	cells := make([]Kind, width*height)
	for i := range cells {
		cells[i] = fill
	}
	return &Grid{width: width, height: height, cells: cells}
}

// FromRows builds a grid from rows indexed [y][x]. All rows must have equal length.
func FromRows(rows [][]Kind) (*Grid, error) {
	height := len(rows)
	if height == 0 {
		return NewGrid(0, 0, Grass), nil
	}
	width := len(rows[0])
	g := NewGrid(width, height, Grass)
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidGrid, y, len(row), width)
		}
		copy(g.cells[y*width:(y+1)*width], row)
	}
	return g, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether the cell lies on the map
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// TerrainAt returns the kind at a cell. Out-of-bounds cells read as Water.
func (g *Grid) TerrainAt(x, y int) Kind {
	if !g.InBounds(x, y) {
		return Water
	}
	return g.cells[y*g.width+x]
}

// Set overwrites a cell; out-of-bounds writes are ignored
func (g *Grid) Set(x, y int, k Kind) {
	if !g.InBounds(x, y) {
		return
	}
	g.cells[y*g.width+x] = k
}

// IsValidPosition reports whether a unit may occupy the cell
func (g *Grid) IsValidPosition(x, y int) bool {
	return g.InBounds(x, y) && g.TerrainAt(x, y).Passable()
}

// Rows copies the grid into [y][x] form for persistence
func (g *Grid) Rows() [][]Kind {
	rows := make([][]Kind, g.height)
	for y := range rows {
		row := make([]Kind, g.width)
		copy(row, g.cells[y*g.width:(y+1)*g.width])
		rows[y] = row
	}
	return rows
}

// Count returns how many cells hold the kind
func (g *Grid) Count(k Kind) int {
	n := 0
	for _, c := range g.cells {
		if c == k {
			n++
		}
	}
	return n
}
