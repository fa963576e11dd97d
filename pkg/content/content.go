// Package content ships the embedded game catalogs: items, entities,
// quests, dialog trees and maps, authored in YAML and validated on
// load. A loaded Bundle satisfies every catalog interface the engine
// consumes.
package content

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jit-rpg/engine/pkg/dialog"
	"github.com/jit-rpg/engine/pkg/grid"
	"github.com/jit-rpg/engine/pkg/item"
	"github.com/jit-rpg/engine/pkg/quest"
	"github.com/jit-rpg/engine/pkg/world"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Bundle is the full decoded content set.
type Bundle struct {
	items    map[string]*item.Definition
	entities map[string]*world.Definition
	quests   map[string]*quest.Definition
	dialogs  map[string]*dialog.Definition
	maps     map[string]*world.MapData
}

// mapSpec is the authored form of a map: walkability as rows of
// characters, decoded into grids at load time.
type mapSpec struct {
	Name       string                `yaml:"name"`
	Tiles      []string              `yaml:"tiles"`
	Spawns     map[string]grid.Point `yaml:"spawns"`
	Exits      []world.Exit          `yaml:"exits"`
	Placements []world.Placement     `yaml:"placements"`
}

// Load decodes the embedded catalogs and validates every cross
// reference. A content error here is a build defect, not a runtime
// condition.
func Load() (*Bundle, error) {
	b := &Bundle{}

	if err := decodeFile("data/items.yaml", &b.items); err != nil {
		return nil, err
	}
	if err := decodeFile("data/entities.yaml", &b.entities); err != nil {
		return nil, err
	}
	if err := decodeFile("data/quests.yaml", &b.quests); err != nil {
		return nil, err
	}
	if err := decodeFile("data/dialogs.yaml", &b.dialogs); err != nil {
		return nil, err
	}

	var specs map[string]*mapSpec
	if err := decodeFile("data/maps.yaml", &specs); err != nil {
		return nil, err
	}
	b.maps = make(map[string]*world.MapData, len(specs))
	for id, spec := range specs {
		m, err := decodeMap(id, spec)
		if err != nil {
			return nil, err
		}
		b.maps[id] = m
	}

	// IDs are the map keys; stamp them into the definitions so the
	// authored files never repeat themselves.
	for id, d := range b.items {
		d.ID = id
	}
	for id, d := range b.entities {
		d.ID = id
	}
	for id, d := range b.quests {
		d.ID = id
	}
	for id, d := range b.dialogs {
		d.ID = id
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func decodeFile(path string, out any) error {
	data, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("content: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("content: decode %s: %w", path, err)
	}
	return nil
}

// decodeMap expands a character-grid map spec. '#' and '~' are
// impassable (walls and rubble), 'w' is water (blocks movement, not
// sight), ' ' is void; anything else is open ground.
func decodeMap(id string, spec *mapSpec) (*world.MapData, error) {
	if len(spec.Tiles) == 0 {
		return nil, fmt.Errorf("content: map %s has no tiles", id)
	}
	height := len(spec.Tiles)
	width := len(spec.Tiles[0])

	walk := make([][]bool, height)
	clear := make([][]bool, height)
	for y, row := range spec.Tiles {
		if len(row) != width {
			return nil, fmt.Errorf("content: map %s row %d is %d wide, want %d", id, y, len(row), width)
		}
		walk[y] = make([]bool, width)
		clear[y] = make([]bool, width)
		for x, ch := range []byte(row) {
			switch ch {
			case '#', '~':
				// wall / rubble
			case ' ':
				// void
			case 'w':
				clear[y][x] = true
			default:
				walk[y][x] = true
				clear[y][x] = true
			}
		}
	}

	return &world.MapData{
		ID:          id,
		Name:        spec.Name,
		Width:       width,
		Height:      height,
		Walkable:    walk,
		Transparent: clear,
		Spawns:      spec.Spawns,
		Exits:       spec.Exits,
		Placements:  spec.Placements,
	}, nil
}

// Item implements item.Catalog.
func (b *Bundle) Item(id string) (*item.Definition, bool) {
	d, ok := b.items[id]
	return d, ok
}

// Entity implements world.Catalog.
func (b *Bundle) Entity(id string) (*world.Definition, bool) {
	d, ok := b.entities[id]
	return d, ok
}

// Quest implements quest.Catalog.
func (b *Bundle) Quest(id string) (*quest.Definition, bool) {
	d, ok := b.quests[id]
	return d, ok
}

// Dialog implements dialog.Catalog.
func (b *Bundle) Dialog(id string) (*dialog.Definition, bool) {
	d, ok := b.dialogs[id]
	return d, ok
}

// Map implements session.MapProvider.
func (b *Bundle) Map(id string) (*world.MapData, bool) {
	m, ok := b.maps[id]
	return m, ok
}

// Sorted id lists, for tooling and tests.

func (b *Bundle) ItemIDs() []string   { return sortedKeys(b.items) }
func (b *Bundle) EntityIDs() []string { return sortedKeys(b.entities) }
func (b *Bundle) QuestIDs() []string  { return sortedKeys(b.quests) }
func (b *Bundle) DialogIDs() []string { return sortedKeys(b.dialogs) }
func (b *Bundle) MapIDs() []string    { return sortedKeys(b.maps) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
