// Package topology places tiles on a small torus and answers neighbour
// queries. Tiles are numbered row-major from zero.
package topology

import "fmt"

// TileID identifies a tile in the grid.
type TileID int

// Direction is one of the four cardinal neighbours, in the order tiles ask
// them for work.
type Direction int

const (
    Down Direction = iota
    Right
    Up
    Left
)

// NumDirections is the number of neighbours every tile has, counting itself
// when the grid wraps onto it.
const NumDirections = 4

// Directions lists every direction in request order.
var Directions = [NumDirections]Direction{Down, Right, Up, Left}

func (d Direction) String() string {
    switch d {
    case Down:
        return "down"
    case Right:
        return "right"
    case Up:
        return "up"
    case Left:
        return "left"
    default:
        return fmt.Sprintf("direction-%d", int(d))
    }
}

// Grid is a Rows×Cols torus.
type Grid struct {
    Rows int
    Cols int
}

// NewGrid validates the dimensions.
func NewGrid(rows, cols int) (Grid, error) {
    if rows <= 0 || cols <= 0 {
        return Grid{}, fmt.Errorf("topology: bad grid %dx%d", rows, cols)
    }
    return Grid{Rows: rows, Cols: cols}, nil
}

// ForTiles returns the grid n tiles are laid out on: a single row of up to
// four, otherwise rows of four.
func ForTiles(n int) (Grid, error) {
    switch {
    case n <= 0:
        return Grid{}, fmt.Errorf("topology: need at least one tile, got %d", n)
    case n <= 4:
        return Grid{Rows: 1, Cols: n}, nil
    case n%4 == 0:
        return Grid{Rows: n / 4, Cols: 4}, nil
    default:
        return Grid{}, fmt.Errorf("topology: %d tiles do not fill rows of four", n)
    }
}

// Size returns the number of tiles.
func (g Grid) Size() int { return g.Rows * g.Cols }

// Contains reports whether t names a tile of g.
func (g Grid) Contains(t TileID) bool { return t >= 0 && int(t) < g.Size() }

// Coord returns t's row and column.
func (g Grid) Coord(t TileID) (row, col int) { return int(t) / g.Cols, int(t) % g.Cols }

// ID returns the tile at row, col.
func (g Grid) ID(row, col int) TileID { return TileID(row*g.Cols + col) }

// Neighbor returns t's neighbour in direction d, wrapping at the edges.
func (g Grid) Neighbor(t TileID, d Direction) TileID {
    row, col := g.Coord(t)
    switch d {
    case Down:
        row = (row + 1) % g.Rows
    case Right:
        col = (col + 1) % g.Cols
    case Up:
        row = (row + g.Rows - 1) % g.Rows
    case Left:
        col = (col + g.Cols - 1) % g.Cols
    }
    return g.ID(row, col)
}

// Neighbors returns t's neighbours in request order. Entries repeat, and may
// be t itself, on small grids.
func (g Grid) Neighbors(t TileID) [NumDirections]TileID {
    var out [NumDirections]TileID
    for i, d := range Directions {
        out[i] = g.Neighbor(t, d)
    }
    return out
}

// IsNeighbor reports whether other is a neighbour of t other than t itself.
func (g Grid) IsNeighbor(t, other TileID) bool {
    if other == t { return false }
    for _, n := range g.Neighbors(t) {
        if n == other { return true }
    }
    return false
}

// SelfDirections counts the directions in which t is its own neighbour. No
// request ever arrives from those directions.
func (g Grid) SelfDirections(t TileID) int {
    n := 0
    for _, nb := range g.Neighbors(t) {
        if nb == t { n++ }
    }
    return n
}

func (g Grid) String() string { return fmt.Sprintf("%dx%d", g.Rows, g.Cols) }
