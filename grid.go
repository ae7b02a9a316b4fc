package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
)

//go:embed assets/level.json
var levelGeometryJSON []byte

// vec2 captures a 2D position in world pixels.
type vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// tile addresses one cell of the walkability grid.
type tile struct {
	Col int
	Row int
}

// Grid is the immutable walkability model shared by every room. A cell is
// blocked when the background layer is absent or the collision layer is set.
// It is derived once at startup and never mutated, so rooms and pathfinder
// workers read it without locking.
type Grid struct {
	cols, rows int
	blocked    []bool
}

type levelLayers struct {
	Background [][]int `json:"background"`
	Collision  [][]int `json:"collision"`
}

// loadGrid parses the embedded level geometry into a Grid.
func loadGrid(data []byte) (*Grid, error) {
	var layers levelLayers
	if err := json.Unmarshal(data, &layers); err != nil {
		return nil, fmt.Errorf("parse level geometry: %w", err)
	}
	return newGrid(layers.Background, layers.Collision)
}

// newGrid derives the walkability grid from the two source layers. Both
// layers must be non-empty and share the same dimensions.
func newGrid(background, collision [][]int) (*Grid, error) {
	if len(background) == 0 || len(background[0]) == 0 {
		return nil, fmt.Errorf("level geometry: empty background layer")
	}
	if len(collision) != len(background) {
		return nil, fmt.Errorf("level geometry: layer row count mismatch (%d vs %d)", len(background), len(collision))
	}
	rows := len(background)
	cols := len(background[0])
	g := &Grid{cols: cols, rows: rows, blocked: make([]bool, cols*rows)}
	for r := 0; r < rows; r++ {
		if len(background[r]) != cols || len(collision[r]) != cols {
			return nil, fmt.Errorf("level geometry: ragged row %d", r)
		}
		for c := 0; c < cols; c++ {
			if background[r][c] == 0 || collision[r][c] != 0 {
				g.blocked[r*cols+c] = true
			}
		}
	}
	return g, nil
}

func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Rows() int { return g.rows }

// Width and Height report the world extent in pixels.
func (g *Grid) Width() float64  { return float64(g.cols) * tileSize }
func (g *Grid) Height() float64 { return float64(g.rows) * tileSize }

func (g *Grid) inBounds(t tile) bool {
	return t.Col >= 0 && t.Row >= 0 && t.Col < g.cols && t.Row < g.rows
}

// Blocked reports whether the tile is unwalkable. Out-of-bounds tiles count
// as blocked.
func (g *Grid) Blocked(t tile) bool {
	if !g.inBounds(t) {
		return true
	}
	return g.blocked[t.Row*g.cols+t.Col]
}

func (g *Grid) Walkable(t tile) bool { return !g.Blocked(t) }

// clampTile forces a tile into grid bounds.
func (g *Grid) clampTile(t tile) tile {
	if t.Col < 0 {
		t.Col = 0
	}
	if t.Row < 0 {
		t.Row = 0
	}
	if t.Col >= g.cols {
		t.Col = g.cols - 1
	}
	if t.Row >= g.rows {
		t.Row = g.rows - 1
	}
	return t
}

// tileAt maps a world position to the containing tile, clamped into bounds.
func (g *Grid) tileAt(x, y float64) tile {
	return g.clampTile(tile{Col: int(math.Floor(x / tileSize)), Row: int(math.Floor(y / tileSize))})
}

// tileCenter returns the world position of a tile's center.
func (g *Grid) tileCenter(t tile) vec2 {
	return vec2{
		X: (float64(t.Col) + 0.5) * tileSize,
		Y: (float64(t.Row) + 0.5) * tileSize,
	}
}

var cardinalOffsets = [...]tile{
	{Col: 0, Row: -1},
	{Col: 1, Row: 0},
	{Col: 0, Row: 1},
	{Col: -1, Row: 0},
}

// openNeighbors returns the walkable cardinal neighbors of a tile.
func (g *Grid) openNeighbors(t tile) []tile {
	neighbors := make([]tile, 0, 4)
	for _, d := range cardinalOffsets {
		n := tile{Col: t.Col + d.Col, Row: t.Row + d.Row}
		if g.Walkable(n) {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

// randomOpenTile picks a uniformly random walkable tile. Returns false when
// the grid has no walkable cells at all.
func (g *Grid) randomOpenTile(rng *rand.Rand) (tile, bool) {
	for attempt := 0; attempt < 256; attempt++ {
		t := tile{Col: rng.Intn(g.cols), Row: rng.Intn(g.rows)}
		if g.Walkable(t) {
			return t, true
		}
	}
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			t := tile{Col: c, Row: r}
			if g.Walkable(t) {
				return t, true
			}
		}
	}
	return tile{}, false
}

// lineOfSight walks a Bresenham ray between the two tiles and reports whether
// every intermediate tile is walkable. The start and end tiles themselves are
// excluded so actors standing against a wall still see out of their own cell.
func (g *Grid) lineOfSight(from, to tile) bool {
	x0, y0 := from.Col, from.Row
	x1, y1 := to.Col, to.Row
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if x0 == x1 && y0 == y1 {
			return true
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
		if x0 == x1 && y0 == y1 {
			return true
		}
		if g.Blocked(tile{Col: x0, Row: y0}) {
			return false
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func distance(a, b vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
