package catalog

import (
	"github.com/aukilabs/dvergr/geometry"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/zyedidia/generic/mapset"
)

const (
	// ErrTypeInvalidCatalog is the error type returned when a catalog cannot be
	// used to generate dungeons.
	ErrTypeInvalidCatalog = "invalid_catalog"
)

// DungeonType describes a kind of dungeon and how many floors it spans.
type DungeonType struct {
	Name             string  `json:"name"              yaml:"name"`
	Description      string  `json:"description"       yaml:"description"`
	SpawnProbability float64 `json:"spawn_probability" yaml:"spawn_probability"`
	MinFloors        int     `json:"min_floors"        yaml:"min_floors"`
	MaxFloors        int     `json:"max_floors"        yaml:"max_floors"`
}

// FloorType describes a kind of floor, its size range and the dungeon types it
// can appear in. An empty AllowedDungeonTypes allows every dungeon type.
type FloorType struct {
	Name                string            `json:"name"                  yaml:"name"`
	Description         string            `json:"description"           yaml:"description"`
	SpawnProbability    float64           `json:"spawn_probability"     yaml:"spawn_probability"`
	MinSize             geometry.Vector3i `json:"min_size"              yaml:"min_size"`
	MaxSize             geometry.Vector3i `json:"max_size"              yaml:"max_size"`
	AllowedDungeonTypes []string          `json:"allowed_dungeon_types" yaml:"allowed_dungeon_types"`
}

// AllowsDungeonType reports whether the floor type may be used in the named
// dungeon type.
func (f *FloorType) AllowsDungeonType(name string) bool {
	if len(f.AllowedDungeonTypes) == 0 {
		return true
	}
	return mapset.Of(f.AllowedDungeonTypes...).Has(name)
}

// RoomType describes a kind of room, its size range and the floor types it can
// appear in. An empty AllowedFloorTypes allows every floor type.
type RoomType struct {
	Name              string            `json:"name"                yaml:"name"`
	Description       string            `json:"description"         yaml:"description"`
	SpawnProbability  float64           `json:"spawn_probability"   yaml:"spawn_probability"`
	MinSize           geometry.Vector3i `json:"min_size"            yaml:"min_size"`
	MaxSize           geometry.Vector3i `json:"max_size"            yaml:"max_size"`
	AllowedFloorTypes []string          `json:"allowed_floor_types" yaml:"allowed_floor_types"`
}

// AllowsFloorType reports whether the room type may be used on the named floor
// type.
func (r *RoomType) AllowsFloorType(name string) bool {
	if len(r.AllowedFloorTypes) == 0 {
		return true
	}
	return mapset.Of(r.AllowedFloorTypes...).Has(name)
}

// Fits reports whether a room footprint of the given size is within the room
// type size range. Zero max sizes are unbounded.
func (r *RoomType) Fits(width, depth int) bool {
	if width < r.MinSize.X || depth < r.MinSize.Z {
		return false
	}
	if r.MaxSize.X > 0 && width > r.MaxSize.X {
		return false
	}
	if r.MaxSize.Z > 0 && depth > r.MaxSize.Z {
		return false
	}
	return true
}

// Catalog is the read-only set of types dungeons are generated from.
type Catalog struct {
	DungeonTypes []*DungeonType `json:"dungeon_types" yaml:"dungeon_types"`
	FloorTypes   []*FloorType   `json:"floor_types"   yaml:"floor_types"`
	RoomTypes    []*RoomType    `json:"room_types"    yaml:"room_types"`
}

// DungeonType returns the dungeon type with the given name.
func (c *Catalog) DungeonType(name string) (*DungeonType, bool) {
	for _, d := range c.DungeonTypes {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// FloorTypesFor returns the floor types allowed in the given dungeon type, in
// catalog order.
func (c *Catalog) FloorTypesFor(d *DungeonType) []*FloorType {
	floors := make([]*FloorType, 0, len(c.FloorTypes))
	for _, f := range c.FloorTypes {
		if f.AllowsDungeonType(d.Name) {
			floors = append(floors, f)
		}
	}
	return floors
}

// RoomTypesFor returns the room types allowed on the given floor type, in
// catalog order.
func (c *Catalog) RoomTypesFor(f *FloorType) []*RoomType {
	rooms := make([]*RoomType, 0, len(c.RoomTypes))
	for _, r := range c.RoomTypes {
		if r.AllowsFloorType(f.Name) {
			rooms = append(rooms, r)
		}
	}
	return rooms
}

// Merge appends the types of o to c.
func (c *Catalog) Merge(o *Catalog) {
	c.DungeonTypes = append(c.DungeonTypes, o.DungeonTypes...)
	c.FloorTypes = append(c.FloorTypes, o.FloorTypes...)
	c.RoomTypes = append(c.RoomTypes, o.RoomTypes...)
}

// Validate checks that the catalog can be used for generation: at least one
// dungeon type and one floor type, unique non-empty names, consistent ranges
// and allow-lists that reference known types.
func (c *Catalog) Validate() error {
	if len(c.DungeonTypes) == 0 {
		return errors.New("no dungeon types configured").
			WithType(ErrTypeInvalidCatalog)
	}

	if len(c.FloorTypes) == 0 {
		return errors.New("no floor types configured").
			WithType(ErrTypeInvalidCatalog)
	}

	dungeonNames := mapset.New[string]()
	for _, d := range c.DungeonTypes {
		if err := validateName(d.Name, "dungeon", dungeonNames); err != nil {
			return err
		}

		if d.MinFloors < 0 || d.MaxFloors < d.MinFloors {
			return errors.New("invalid dungeon floor range").
				WithType(ErrTypeInvalidCatalog).
				WithTag("dungeon_type", d.Name).
				WithTag("min_floors", d.MinFloors).
				WithTag("max_floors", d.MaxFloors)
		}
	}

	floorNames := mapset.New[string]()
	for _, f := range c.FloorTypes {
		if err := validateName(f.Name, "floor", floorNames); err != nil {
			return err
		}

		if !validSizeRange(f.MinSize, f.MaxSize) {
			return errors.New("invalid floor size range").
				WithType(ErrTypeInvalidCatalog).
				WithTag("floor_type", f.Name).
				WithTag("min_size", f.MinSize).
				WithTag("max_size", f.MaxSize)
		}

		for _, name := range f.AllowedDungeonTypes {
			if !dungeonNames.Has(name) {
				return errors.New("floor type allows an unknown dungeon type").
					WithType(ErrTypeInvalidCatalog).
					WithTag("floor_type", f.Name).
					WithTag("dungeon_type", name)
			}
		}
	}

	roomNames := mapset.New[string]()
	for _, r := range c.RoomTypes {
		if err := validateName(r.Name, "room", roomNames); err != nil {
			return err
		}

		if r.MaxSize != (geometry.Vector3i{}) && !validSizeRange(r.MinSize, r.MaxSize) {
			return errors.New("invalid room size range").
				WithType(ErrTypeInvalidCatalog).
				WithTag("room_type", r.Name).
				WithTag("min_size", r.MinSize).
				WithTag("max_size", r.MaxSize)
		}

		for _, name := range r.AllowedFloorTypes {
			if !floorNames.Has(name) {
				return errors.New("room type allows an unknown floor type").
					WithType(ErrTypeInvalidCatalog).
					WithTag("room_type", r.Name).
					WithTag("floor_type", name)
			}
		}
	}

	return nil
}

func validateName(name, kind string, seen mapset.Set[string]) error {
	if name == "" {
		return errors.Newf("%s type without name", kind).
			WithType(ErrTypeInvalidCatalog)
	}

	if seen.Has(name) {
		return errors.Newf("duplicate %s type", kind).
			WithType(ErrTypeInvalidCatalog).
			WithTag("name", name)
	}

	seen.Put(name)
	return nil
}

func validSizeRange(min, max geometry.Vector3i) bool {
	return geometry.Vector3i{}.LesserOrEqualThan(min) && min.LesserOrEqualThan(max)
}
