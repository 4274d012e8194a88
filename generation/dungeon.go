package generation

import (
	"math"
	"sync"
	"time"

	"github.com/aukilabs/dvergr/catalog"
	"github.com/aukilabs/dvergr/geometry"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

const (
	// DefaultFloorSpacing is the default vertical distance between two floors.
	DefaultFloorSpacing = 4

	// ErrTypeUnknownDungeonType is the type of the error returned when a
	// requested dungeon type is not in the catalog.
	ErrTypeUnknownDungeonType = "unknown_dungeon_type"
)

// Generator generates dungeons from a catalog.
type Generator struct {
	// The catalog dungeons are generated from.
	Catalog *catalog.Catalog

	// The floor layout. Only the all-zero FloorLayout is replaced by
	// DefaultFloorLayout; any other value is used as is, and a MinAreaSize
	// below 1 leaves every floor a single leaf.
	Layout FloorLayout

	// The vertical distance between two floors. Zero uses DefaultFloorSpacing.
	FloorSpacing int

	// The room type policy. Nil uses FirstRoomType.
	RoomTypes RoomTypeSelector

	// Lays out floors concurrently. The output is identical to a sequential
	// run.
	Parallel bool

	// The clock used to draw a seed when none is given. Nil uses time.Now.
	Now func() time.Time
}

// Generate generates a dungeon from the given seed. A zero seed is replaced by a
// time based seed, which makes the run non-reproducible unless the seed of the
// returned dungeon is reused.
func (g *Generator) Generate(seed int64) (*DungeonInstance, error) {
	return g.generate(seed, "")
}

// GenerateOfType generates a dungeon of the named dungeon type. The dungeon
// type draw still happens so the rest of the random sequence matches Generate.
func (g *Generator) GenerateOfType(seed int64, dungeonType string) (*DungeonInstance, error) {
	return g.generate(seed, dungeonType)
}

func (g *Generator) generate(seed int64, dungeonTypeName string) (*DungeonInstance, error) {
	start := time.Now()

	if g.Catalog == nil {
		err := errors.New("no catalog configured").WithType(ErrTypeConfiguration)
		instrumentError(err)
		return nil, err
	}

	if err := g.Catalog.Validate(); err != nil {
		err = errors.New("invalid catalog").
			WithType(ErrTypeConfiguration).
			Wrap(err)
		instrumentError(err)
		return nil, err
	}

	if seed == 0 {
		seed = g.timeSeed()
	}
	src := NewSeededSource(seed)

	dungeonType := g.Catalog.DungeonTypes[src.Int(0, len(g.Catalog.DungeonTypes))]
	if dungeonTypeName != "" {
		d, ok := g.Catalog.DungeonType(dungeonTypeName)
		if !ok {
			err := errors.New("unknown dungeon type").
				WithType(ErrTypeUnknownDungeonType).
				WithTag("dungeon_type", dungeonTypeName)
			instrumentError(err)
			return nil, err
		}
		dungeonType = d
	}

	logs.WithTag("seed", seed).
		WithTag("dungeon_type", dungeonType.Name).
		Debug("generating dungeon")

	dungeon := &DungeonInstance{
		Seed:        seed,
		DungeonType: dungeonType,
		Floors:      g.drawFloors(dungeonType, src),
	}

	for i := range dungeon.Floors {
		dungeon.Floors[i].Seed = int64(src.Int(0, math.MaxInt32))
	}

	g.layoutFloors(dungeon.Floors)

	instrumentDungeon(dungeon, start)
	logDungeon(dungeon)
	return dungeon, nil
}

func (g *Generator) drawFloors(dungeonType *catalog.DungeonType, src RandomSource) []FloorInstance {
	count := src.Int(dungeonType.MinFloors, dungeonType.MaxFloors+1)
	spacing := g.floorSpacing()
	floors := make([]FloorInstance, count)

	for i := range floors {
		floorType := g.chooseFloorType(dungeonType, src)

		floors[i] = FloorInstance{
			FloorIndex: i,
			FloorType:  floorType,
			Position:   geometry.NewVector3i(0, -i*spacing, 0),
			Size: geometry.NewVector3i(
				src.Int(floorType.MinSize.X, floorType.MaxSize.X+1),
				src.Int(floorType.MinSize.Y, floorType.MaxSize.Y+1),
				src.Int(floorType.MinSize.Z, floorType.MaxSize.Z+1),
			),
			LayoutType: LayoutBSP,
		}
	}
	return floors
}

func (g *Generator) chooseFloorType(dungeonType *catalog.DungeonType, src RandomSource) *catalog.FloorType {
	candidates := g.Catalog.FloorTypesFor(dungeonType)
	if len(candidates) == 0 {
		err := errors.New("no floor type allowed in dungeon type").
			WithType(ErrTypeLayoutWarning).
			WithTag("dungeon_type", dungeonType.Name).
			WithTag("fallback", g.Catalog.FloorTypes[0].Name)
		instrumentError(err)
		logs.Warn(err)
		return g.Catalog.FloorTypes[0]
	}
	return candidates[src.Int(0, len(candidates))]
}

func (g *Generator) layoutFloors(floors []FloorInstance) {
	if !g.Parallel {
		for i := range floors {
			g.layoutFloor(&floors[i])
		}
		return
	}

	var wg sync.WaitGroup
	for i := range floors {
		wg.Add(1)
		go func(f *FloorInstance) {
			defer wg.Done()
			g.layoutFloor(f)
		}(&floors[i])
	}
	wg.Wait()
}

func (g *Generator) layoutFloor(f *FloorInstance) {
	src := NewSeededSource(f.Seed)

	root, frontier := g.layout().Generate(f.Footprint(), src)
	f.Root = root
	f.Rooms = make([]RoomInstance, 0, len(frontier))

	selector := g.roomTypes()
	for _, n := range frontier {
		if n.Room == nil {
			continue
		}

		f.Rooms = append(f.Rooms, RoomInstance{
			RoomID:      len(f.Rooms),
			Bounds:      *n.Room,
			RoomType:    selector.SelectRoomType(g.Catalog, f.FloorType, *n.Room, src),
			Connections: []ConnectionPoint{},
		})
	}

	if len(g.Catalog.RoomTypes) == 0 && len(f.Rooms) != 0 {
		logs.WithTag("floor_index", f.FloorIndex).
			Debug("no room type configured, rooms are untyped")
	}

	instrumentFloor(f)
	logFloor(f)
}

func (g *Generator) layout() FloorLayout {
	if g.Layout == (FloorLayout{}) {
		return DefaultFloorLayout()
	}
	return g.Layout
}

func (g *Generator) floorSpacing() int {
	if g.FloorSpacing == 0 {
		return DefaultFloorSpacing
	}
	return g.FloorSpacing
}

func (g *Generator) roomTypes() RoomTypeSelector {
	if g.RoomTypes == nil {
		return FirstRoomType{}
	}
	return g.RoomTypes
}

func (g *Generator) timeSeed() int64 {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	seed := now().UnixNano() % math.MaxInt32
	if seed <= 0 {
		seed = -seed + 1
	}
	return seed
}
