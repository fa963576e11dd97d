// Package grid holds the shared tile-coordinate primitives used by the
// actor, world and combat packages.
package grid

import "math"

// Point is a tile coordinate on a map grid.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Distance returns the Euclidean distance between two tiles. Range
// checks add a half-tile tolerance on top of this to accommodate
// diagonal movement.
func Distance(a, b Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// StepToward returns the single-tile step from a toward b, moving on
// both axes at once when both differ (sign-based movement).
func StepToward(a, b Point) Point {
	return Point{X: a.X + sign(b.X-a.X), Y: a.Y + sign(b.Y-a.Y)}
}

// Adjacent reports whether two tiles are within one step of each
// other, diagonals included.
func Adjacent(a, b Point) bool {
	return abs(a.X-b.X) <= 1 && abs(a.Y-b.Y) <= 1
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
