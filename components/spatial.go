package components

import "fmt"

// Coordinate is a (row, column) cell address on the field.
type Coordinate struct {
	Row, Col int
}

// At is shorthand for Coordinate{Row: row, Col: col}.
func At(row, col int) Coordinate {
	return Coordinate{Row: row, Col: col}
}

// String formats the coordinate as (row,col).
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Location is an organism's position on the field.
// A zero Location is "nowhere": dead organisms hold no spatial identity.
type Location struct {
	coord  Coordinate
	placed bool
}

// LocatedAt returns a Location pointing at c.
func LocatedAt(c Coordinate) Location {
	return Location{coord: c, placed: true}
}

// Get returns the coordinate and whether the organism is on the field.
func (l Location) Get() (Coordinate, bool) {
	return l.coord, l.placed
}

// Placed reports whether the location refers to a cell.
func (l Location) Placed() bool {
	return l.placed
}

// Clear removes the spatial identity.
func (l *Location) Clear() {
	*l = Location{}
}
