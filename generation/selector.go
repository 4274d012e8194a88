package generation

import (
	"github.com/aukilabs/dvergr/catalog"
	"github.com/aukilabs/dvergr/geometry"
)

// RoomTypeSelector chooses the type of a carved room.
type RoomTypeSelector interface {
	SelectRoomType(c *catalog.Catalog, floor *catalog.FloorType, room geometry.Rect, src RandomSource) *catalog.RoomType
}

// FirstRoomType selects the first configured room type for every room.
type FirstRoomType struct{}

func (FirstRoomType) SelectRoomType(c *catalog.Catalog, floor *catalog.FloorType, room geometry.Rect, src RandomSource) *catalog.RoomType {
	if len(c.RoomTypes) == 0 {
		return nil
	}
	return c.RoomTypes[0]
}

// WeightedRoomType selects a room type among the ones allowed on the floor type
// whose size range admits the room, weighted by spawn probability. When no
// candidate has a weight the choice is uniform. When there is no candidate it
// falls back to the first configured room type.
type WeightedRoomType struct{}

func (WeightedRoomType) SelectRoomType(c *catalog.Catalog, floor *catalog.FloorType, room geometry.Rect, src RandomSource) *catalog.RoomType {
	var candidates []*catalog.RoomType
	var total float64

	for _, r := range c.RoomTypesFor(floor) {
		if !r.Fits(room.Width, room.Height) {
			continue
		}
		candidates = append(candidates, r)
		total += max(r.SpawnProbability, 0)
	}

	switch {
	case len(candidates) == 0:
		return FirstRoomType{}.SelectRoomType(c, floor, room, src)

	case total == 0:
		return candidates[src.Int(0, len(candidates))]
	}

	pick := src.Float64() * total
	for _, r := range candidates {
		pick -= max(r.SpawnProbability, 0)
		if pick < 0 {
			return r
		}
	}
	return candidates[len(candidates)-1]
}
