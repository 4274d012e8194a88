package generation

import (
	"github.com/aukilabs/go-tooling/pkg/logs"
)

func logDegenerateLeaf(err error) {
	logs.WithTag("err_type", ErrTypeDegenerateGeometry).Debug(err)
}

func logFloor(f *FloorInstance) {
	logs.WithTag("floor_index", f.FloorIndex).
		WithTag("floor_type", f.FloorType.Name).
		WithTag("size", f.Size).
		WithTag("seed", f.Seed).
		WithTag("rooms", len(f.Rooms)).
		Debug("floor layout generated")
}

func logDungeon(d *DungeonInstance) {
	logs.WithTag("seed", d.Seed).
		WithTag("dungeon_type", d.DungeonType.Name).
		WithTag("floors", len(d.Floors)).
		WithTag("rooms", d.RoomCount()).
		Info("dungeon generated")
}
