package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

const testJSONCatalog = `{
	"dungeon_types": [
		{"name": "keep", "min_floors": 1, "max_floors": 2}
	],
	"floor_types": [
		{
			"name": "hall",
			"min_size": {"x": 20, "y": 1, "z": 20},
			"max_size": {"x": 30, "y": 1, "z": 30}
		}
	]
}`

const testYAMLCatalog = `
room_types:
  - name: vault
    spawn_probability: 0.5
    min_size: {x: 4, y: 1, z: 4}
    max_size: {x: 8, y: 1, z: 8}
    allowed_floor_types: [hall]
`

func writeTestFile(t *testing.T, dir, name, content string) string {
	filename := filepath.Join(dir, name)
	err := os.WriteFile(filename, []byte(content), 0o600)
	require.NoError(t, err)
	return filename
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		c, err := LoadFile(writeTestFile(t, dir, "keep.json", testJSONCatalog))
		require.NoError(t, err)
		require.Len(t, c.DungeonTypes, 1)
		require.Equal(t, "keep", c.DungeonTypes[0].Name)
		require.Equal(t, 2, c.DungeonTypes[0].MaxFloors)
		require.Equal(t, 30, c.FloorTypes[0].MaxSize.Z)
	})

	t.Run("yaml", func(t *testing.T) {
		c, err := LoadFile(writeTestFile(t, dir, "rooms.yml", testYAMLCatalog))
		require.NoError(t, err)
		require.Len(t, c.RoomTypes, 1)
		require.Equal(t, 0.5, c.RoomTypes[0].SpawnProbability)
		require.Equal(t, []string{"hall"}, c.RoomTypes[0].AllowedFloorTypes)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadFile(writeTestFile(t, dir, "catalog.txt", "hello"))
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeCatalogLoad))
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := LoadFile(writeTestFile(t, dir, "broken.json", "{"))
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeCatalogLoad))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
		require.Error(t, err)
	})
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.json", testJSONCatalog)
	writeTestFile(t, dir, "b.yaml", testYAMLCatalog)
	writeTestFile(t, dir, "README.md", "# catalog")

	c, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, c.DungeonTypes, 1)
	require.Len(t, c.FloorTypes, 1)
	require.Len(t, c.RoomTypes, 1)
	require.NoError(t, c.Validate())
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	require.True(t, errors.IsType(err, ErrTypeCatalogLoad))
}
