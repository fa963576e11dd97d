package world

import "github.com/jit-rpg/engine/pkg/grid"

// Exit is a walk-on map transition.
type Exit struct {
	Position    grid.Point `json:"position" yaml:"position"`
	TargetMap   string     `json:"target_map" yaml:"target_map"`
	TargetSpawn string     `json:"target_spawn,omitempty" yaml:"target_spawn,omitempty"`
}

// Placement puts an entity definition at a tile.
type Placement struct {
	Entity   string     `json:"entity" yaml:"entity"`
	Position grid.Point `json:"position" yaml:"position"`
}

// MapData is the decoded form of a map handed over by the map provider:
// walkability and transparency grids plus spawns, exits and entity
// placements. How it was authored or encoded is not the engine's concern.
type MapData struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`

	// Walkable and Transparent are indexed [y][x].
	Walkable    [][]bool `json:"walkable" yaml:"walkable"`
	Transparent [][]bool `json:"transparent,omitempty" yaml:"transparent,omitempty"`

	Spawns     map[string]grid.Point `json:"spawns,omitempty" yaml:"spawns,omitempty"`
	Exits      []Exit                `json:"exits,omitempty" yaml:"exits,omitempty"`
	Placements []Placement           `json:"placements,omitempty" yaml:"placements,omitempty"`
}

// InBounds reports whether the point lies on the map.
func (m *MapData) InBounds(p grid.Point) bool {
	return p.X >= 0 && p.X < m.Width && p.Y >= 0 && p.Y < m.Height
}

// IsWalkable reports whether the tile can be stepped on.
func (m *MapData) IsWalkable(p grid.Point) bool {
	return m.InBounds(p) && m.Walkable[p.Y][p.X]
}

// Spawn resolves a named spawn point, falling back to "start" and then
// to (1,1) so a bad spawn name never strands the player off-map.
func (m *MapData) Spawn(name string) grid.Point {
	if p, ok := m.Spawns[name]; ok {
		return p
	}
	if p, ok := m.Spawns["start"]; ok {
		return p
	}
	return grid.Point{X: 1, Y: 1}
}

// ExitAt returns the exit on a tile, if any.
func (m *MapData) ExitAt(p grid.Point) (Exit, bool) {
	for _, e := range m.Exits {
		if e.Position == p {
			return e, true
		}
	}
	return Exit{}, false
}
