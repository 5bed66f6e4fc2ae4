// Package systems provides the field grid and the ECS systems that drive
// organisms through a simulation step.
package systems

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/traits"
)

var (
	// ErrOutOfBounds is returned when a placement targets a cell outside the grid.
	// A correct engine never produces it.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrInvalidDimensions is returned by NewField for non-positive dimensions.
	ErrInvalidDimensions = errors.New("field dimensions must be positive")
)

// Occupant is the field's record of who sits in a cell. It is a weak
// reference: the entity lives in the ECS world, the field only names it.
type Occupant struct {
	Entity  ecs.Entity
	Species traits.SpeciesID
}

type cell struct {
	occ Occupant
	set bool
}

// Field is the bounded depth x width grid. Each cell holds at most one occupant.
type Field struct {
	depth, width int
	cells        []cell
	occupied     int
}

// neighbourOffsets fixes the adjacency scan order: row-major, self excluded.
var neighbourOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// NewField allocates an empty field.
func NewField(depth, width int) (*Field, error) {
	if depth <= 0 || width <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", depth, width, ErrInvalidDimensions)
	}
	return &Field{
		depth: depth,
		width: width,
		cells: make([]cell, depth*width),
	}, nil
}

// Dimensions returns (depth, width).
func (f *Field) Dimensions() (depth, width int) {
	return f.depth, f.width
}

// Occupied returns the number of occupied cells.
func (f *Field) Occupied() int { return f.occupied }

// InBounds reports whether c lies inside [0,depth) x [0,width).
func (f *Field) InBounds(c components.Coordinate) bool {
	return c.Row >= 0 && c.Row < f.depth && c.Col >= 0 && c.Col < f.width
}

func (f *Field) index(c components.Coordinate) int {
	return c.Row*f.width + c.Col
}

// IsVacant reports whether c is inside the grid and unoccupied.
func (f *Field) IsVacant(c components.Coordinate) bool {
	return f.InBounds(c) && !f.cells[f.index(c)].set
}

// OccupantAt returns the occupant of c, if any.
func (f *Field) OccupantAt(c components.Coordinate) (Occupant, bool) {
	if !f.InBounds(c) {
		return Occupant{}, false
	}
	cl := f.cells[f.index(c)]
	return cl.occ, cl.set
}

// Place records o at c. A previous record at c is overwritten, not killed;
// callers kill first and move second.
func (f *Field) Place(o Occupant, c components.Coordinate) error {
	if !f.InBounds(c) {
		return fmt.Errorf("place at %v in %dx%d field: %w", c, f.depth, f.width, ErrOutOfBounds)
	}
	cl := &f.cells[f.index(c)]
	if !cl.set {
		f.occupied++
	}
	cl.occ = o
	cl.set = true
	return nil
}

// Clear removes any record at c. Clearing a vacant or out-of-bounds cell is a no-op.
func (f *Field) Clear(c components.Coordinate) {
	if !f.InBounds(c) {
		return
	}
	cl := &f.cells[f.index(c)]
	if cl.set {
		f.occupied--
	}
	*cl = cell{}
}

// ClearAll empties the grid.
func (f *Field) ClearAll() {
	clear(f.cells)
	f.occupied = 0
}

// AppendAdjacent appends the in-bounds Moore neighbours of c to dst in scan order.
// Reuse dst across calls to avoid allocations.
func (f *Field) AppendAdjacent(dst []components.Coordinate, c components.Coordinate) []components.Coordinate {
	for _, off := range neighbourOffsets {
		n := components.Coordinate{Row: c.Row + off[0], Col: c.Col + off[1]}
		if f.InBounds(n) {
			dst = append(dst, n)
		}
	}
	return dst
}

// AdjacentCoordinates returns the up-to-8 in-bounds neighbours of c.
func (f *Field) AdjacentCoordinates(c components.Coordinate) []components.Coordinate {
	return f.AppendAdjacent(make([]components.Coordinate, 0, 8), c)
}

// FreeAdjacentCoordinates returns the vacant neighbours of c in scan order.
func (f *Field) FreeAdjacentCoordinates(c components.Coordinate) []components.Coordinate {
	free := make([]components.Coordinate, 0, 8)
	for _, off := range neighbourOffsets {
		n := components.Coordinate{Row: c.Row + off[0], Col: c.Col + off[1]}
		if f.IsVacant(n) {
			free = append(free, n)
		}
	}
	return free
}

// FreeAdjacentCoordinate returns the first vacant neighbour of c.
func (f *Field) FreeAdjacentCoordinate(c components.Coordinate) (components.Coordinate, bool) {
	for _, off := range neighbourOffsets {
		n := components.Coordinate{Row: c.Row + off[0], Col: c.Col + off[1]}
		if f.IsVacant(n) {
			return n, true
		}
	}
	return components.Coordinate{}, false
}

// Each calls fn for every occupied cell in row-major order.
func (f *Field) Each(fn func(c components.Coordinate, o Occupant)) {
	for i, cl := range f.cells {
		if cl.set {
			fn(components.Coordinate{Row: i / f.width, Col: i % f.width}, cl.occ)
		}
	}
}
