package generation

import (
	"github.com/aukilabs/dvergr/catalog"
	"github.com/aukilabs/dvergr/geometry"
)

// LayoutType is the algorithm used to lay out a floor.
type LayoutType string

const (
	LayoutBSP        LayoutType = "bsp"
	LayoutSingleRoom LayoutType = "single_room"
	LayoutGrid       LayoutType = "grid"
	LayoutOrganic    LayoutType = "organic"
)

// ConnectionType is the kind of passage a connection point opens.
type ConnectionType string

const (
	ConnectionDoor       ConnectionType = "door"
	ConnectionCorridor   ConnectionType = "corridor"
	ConnectionStairUp    ConnectionType = "stair_up"
	ConnectionStairDown  ConnectionType = "stair_down"
	ConnectionSecretDoor ConnectionType = "secret_door"
	ConnectionTeleporter ConnectionType = "teleporter"
)

// ConnectionPoint is a passage from a room to another room.
type ConnectionPoint struct {
	Position     geometry.Vector3i `json:"position"`
	Type         ConnectionType    `json:"type"`
	TargetRoomID int               `json:"target_room_id"`
}

// RoomInstance is a room carved in a floor.
type RoomInstance struct {
	// The room identifier, unique within its floor.
	RoomID int `json:"room_id"`

	// The room rectangle in floor-local coordinates.
	Bounds geometry.Rect `json:"bounds"`

	// The room type. It is nil when the catalog has no room type.
	RoomType *catalog.RoomType `json:"room_type"`

	// Rooms are generated without connections. The slice is never nil.
	Connections []ConnectionPoint `json:"connections"`
}

// FloorInstance is a generated floor.
type FloorInstance struct {
	FloorIndex int                `json:"floor_index"`
	FloorType  *catalog.FloorType `json:"floor_type"`
	Size       geometry.Vector3i  `json:"size"`
	Position   geometry.Vector3i  `json:"position"`
	LayoutType LayoutType         `json:"layout_type"`

	// The seed of the floor random source, derived from the dungeon seed.
	Seed int64 `json:"seed"`

	// The root of the floor partition tree.
	Root *Node `json:"root,omitempty"`

	// The rooms, in leaf order.
	Rooms []RoomInstance `json:"rooms"`
}

// Footprint returns the floor rectangle the partition tree covers.
func (f *FloorInstance) Footprint() geometry.Rect {
	return f.Size.Footprint()
}

// DungeonInstance is the result of a generation run.
type DungeonInstance struct {
	// The seed the dungeon was generated with. Generating again with this seed
	// and the same catalog reproduces the dungeon.
	Seed        int64                `json:"seed"`
	DungeonType *catalog.DungeonType `json:"dungeon_type"`
	Floors      []FloorInstance      `json:"floors"`
}

// RoomCount returns the number of rooms across all floors.
func (d *DungeonInstance) RoomCount() int {
	count := 0
	for _, f := range d.Floors {
		count += len(f.Rooms)
	}
	return count
}

// WithoutTrees returns a copy of the dungeon whose floors do not reference
// their partition trees.
func (d *DungeonInstance) WithoutTrees() *DungeonInstance {
	c := *d
	c.Floors = make([]FloorInstance, len(d.Floors))
	for i, f := range d.Floors {
		f.Root = nil
		c.Floors[i] = f
	}
	return &c
}
