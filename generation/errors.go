package generation

const (
	// ErrTypeConfiguration is the type of errors that abort a generation run
	// because the catalog cannot produce a dungeon.
	ErrTypeConfiguration = "configuration_error"

	// ErrTypeLayoutWarning is the type of the recoverable anomalies that are
	// logged while generation continues.
	ErrTypeLayoutWarning = "layout_warning"

	// ErrTypeDegenerateGeometry is the type of the errors reported when a leaf
	// is too small to hold a room.
	ErrTypeDegenerateGeometry = "degenerate_geometry"
)
