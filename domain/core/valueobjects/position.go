package valueobjects

// Position is the canvas placement of a snippet. Layout only; it never
// affects graph semantics.
type Position struct {
	X float64
	Y float64
}

// NewPosition creates a new position
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}
