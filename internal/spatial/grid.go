// Package spatial provides a uniform-grid neighbor index for agent
// positions, used by the engine to avoid O(N^2) connectivity checks.
package spatial

import (
	"math"

	"github.com/callebtc/bitchat-simulator-sub000/internal/geom"
)

// DefaultCellSize matches the BLE connect radius (spec §4.5): a cell size
// on that order keeps the 3x3 neighbor window tight without missing
// anything a connect-radius query cares about.
const DefaultCellSize = 100.0

type cellKey struct{ x, y int }

// Entry pairs an opaque identifier with its position, so the grid doesn't
// need to know what it's indexing.
type Entry struct {
	ID  string
	Pos geom.Point2D
}

// Grid is a uniform-grid spatial index rebuilt from scratch each tick.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]Entry
}

// New creates a Grid with the given cell size. A size <= 0 falls back to
// DefaultCellSize.
func New(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{cellSize: cellSize, cells: make(map[cellKey][]Entry)}
}

func (g *Grid) keyOf(p geom.Point2D) cellKey {
	return cellKey{
		x: int(math.Floor(p.X / g.cellSize)),
		y: int(math.Floor(p.Y / g.cellSize)),
	}
}

// UpdateAll rebuilds the grid from the given entries, discarding whatever
// it held before. Called once per tick with current agent positions.
func (g *Grid) UpdateAll(entries []Entry) {
	g.cells = make(map[cellKey][]Entry, len(entries))
	for _, e := range entries {
		k := g.keyOf(e.Pos)
		g.cells[k] = append(g.cells[k], e)
	}
}

// GetNeighbors returns the indexed entries within radius r of p, found by
// scanning only the 3x3 cell window around p (entries exactly at r are
// included). The result is complete when r is at most the cell size; for
// a larger r, entries beyond that window are not returned. Complexity is O(1 + k) in the number of entries sharing that
// window, not O(N), for a roughly uniform distribution.
func (g *Grid) GetNeighbors(p geom.Point2D, r float64) []Entry {
	center := g.keyOf(p)
	var out []Entry
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			k := cellKey{center.x + dx, center.y + dy}
			for _, e := range g.cells[k] {
				if p.Distance(e.Pos) <= r {
					out = append(out, e)
				}
			}
		}
	}
	return out
}
