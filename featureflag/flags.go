package featureflag

type Flag string

const (
	// Lays out the floors of a dungeon concurrently.
	FlagParallelFloors Flag = "PARALLEL_FLOORS"

	// Chooses room types by allow-list, size and spawn probability instead of
	// using the first configured room type.
	FlagWeightedRoomTypes Flag = "WEIGHTED_ROOM_TYPES"

	// Skips writing generated dungeons to the archive.
	FlagDisableArchive Flag = "DISABLE_ARCHIVE"

	// Omits partition trees from API responses.
	FlagDisablePartitionTree Flag = "DISABLE_PARTITION_TREE"
)
