package main

import (
	"github.com/jit-rpg/engine/pkg/grid"
	"github.com/jit-rpg/engine/pkg/world"
)

// linePath walks straight toward the target one step at a time and
// gives up at the first blocked tile. Good enough for open wasteland;
// the engine treats an empty path as unreachable.
type linePath struct{}

func (linePath) FindPath(m *world.MapData, from, to grid.Point) []grid.Point {
	if !m.IsWalkable(to) {
		return nil
	}

	var path []grid.Point
	cur := from
	for cur != to {
		next := grid.StepToward(cur, to)
		if next == cur || !m.IsWalkable(next) {
			return nil
		}
		path = append(path, next)
		cur = next
		if len(path) > m.Width*m.Height {
			return nil
		}
	}
	return path
}

// rayFOV casts a line to every tile within the radius and marks it
// visible when nothing opaque sits between it and the origin.
type rayFOV struct{}

func (rayFOV) Visible(m *world.MapData, origin grid.Point, radius int) map[grid.Point]bool {
	visible := map[grid.Point]bool{origin: true}

	for y := origin.Y - radius; y <= origin.Y+radius; y++ {
		for x := origin.X - radius; x <= origin.X+radius; x++ {
			p := grid.Point{X: x, Y: y}
			if !m.InBounds(p) || grid.Distance(origin, p) > float64(radius) {
				continue
			}
			if lineClear(m, origin, p) {
				visible[p] = true
			}
		}
	}
	return visible
}

// lineClear runs Bresenham from a to b and reports whether every tile
// strictly between them is transparent. The endpoint itself may be
// opaque; walls are visible, you just cannot see past them.
func lineClear(m *world.MapData, a, b grid.Point) bool {
	dx, sx := abs(b.X-a.X), sign(b.X-a.X)
	dy, sy := -abs(b.Y-a.Y), sign(b.Y-a.Y)
	err := dx + dy

	x, y := a.X, a.Y
	for {
		if x == b.X && y == b.Y {
			return true
		}
		if (x != a.X || y != a.Y) && !m.Transparent[y][x] {
			return false
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
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
