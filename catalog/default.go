package catalog

import "github.com/aukilabs/dvergr/geometry"

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		DungeonTypes: []*DungeonType{
			{
				Name:             "crypt",
				Description:      "Burial halls dug under a forgotten chapel.",
				SpawnProbability: 1,
				MinFloors:        1,
				MaxFloors:        3,
			},
		},
		FloorTypes: []*FloorType{
			{
				Name:             "catacombs",
				Description:      "Narrow burial corridors and niches.",
				SpawnProbability: 0.7,
				MinSize:          geometry.NewVector3i(32, 1, 32),
				MaxSize:          geometry.NewVector3i(48, 1, 48),
			},
			{
				Name:                "ossuary",
				Description:         "Bone-lined vaults.",
				SpawnProbability:    0.3,
				MinSize:             geometry.NewVector3i(24, 1, 24),
				MaxSize:             geometry.NewVector3i(32, 1, 32),
				AllowedDungeonTypes: []string{"crypt"},
			},
		},
		RoomTypes: []*RoomType{
			{
				Name:             "chamber",
				Description:      "An empty chamber.",
				SpawnProbability: 0.6,
				MinSize:          geometry.NewVector3i(1, 1, 1),
			},
			{
				Name:              "tomb",
				Description:       "A sealed tomb.",
				SpawnProbability:  0.3,
				MinSize:           geometry.NewVector3i(4, 1, 4),
				MaxSize:           geometry.NewVector3i(12, 1, 12),
				AllowedFloorTypes: []string{"catacombs"},
			},
			{
				Name:              "shrine",
				Description:       "A shrine to the dead.",
				SpawnProbability:  0.1,
				MinSize:           geometry.NewVector3i(6, 1, 6),
				MaxSize:           geometry.NewVector3i(16, 1, 16),
				AllowedFloorTypes: []string{"ossuary"},
			},
		},
	}
}
