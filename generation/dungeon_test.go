package generation

import (
	"testing"
	"time"

	"github.com/aukilabs/dvergr/catalog"
	"github.com/aukilabs/dvergr/geometry"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func newTestCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		DungeonTypes: []*catalog.DungeonType{
			{Name: "keep", MinFloors: 1, MaxFloors: 3},
			{Name: "mine", MinFloors: 2, MaxFloors: 5},
		},
		FloorTypes: []*catalog.FloorType{
			{
				Name:    "hall",
				MinSize: geometry.NewVector3i(32, 1, 32),
				MaxSize: geometry.NewVector3i(48, 2, 48),
			},
			{
				Name:                "gallery",
				MinSize:             geometry.NewVector3i(20, 1, 60),
				MaxSize:             geometry.NewVector3i(24, 1, 64),
				AllowedDungeonTypes: []string{"mine"},
			},
		},
		RoomTypes: []*catalog.RoomType{
			{Name: "storage", SpawnProbability: 1},
			{
				Name:              "vault",
				SpawnProbability:  3,
				MinSize:           geometry.NewVector3i(6, 1, 6),
				AllowedFloorTypes: []string{"hall"},
			},
		},
	}
}

func newGoldenCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		DungeonTypes: []*catalog.DungeonType{
			{Name: "golden", MinFloors: 1, MaxFloors: 1},
		},
		FloorTypes: []*catalog.FloorType{
			{
				Name:    "square",
				MinSize: geometry.NewVector3i(32, 1, 32),
				MaxSize: geometry.NewVector3i(32, 1, 32),
			},
		},
		RoomTypes: []*catalog.RoomType{
			{Name: "room"},
		},
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func requireDungeonInvariants(t *testing.T, c *catalog.Catalog, d *DungeonInstance) {
	require.NotNil(t, d.DungeonType)
	require.GreaterOrEqual(t, len(d.Floors), d.DungeonType.MinFloors)
	require.LessOrEqual(t, len(d.Floors), d.DungeonType.MaxFloors)

	for i, f := range d.Floors {
		require.Equal(t, i, f.FloorIndex)
		require.Equal(t, geometry.NewVector3i(0, -i*DefaultFloorSpacing, 0), f.Position)
		require.Equal(t, LayoutBSP, f.LayoutType)
		require.True(t, f.FloorType.MinSize.LesserOrEqualThan(f.Size))
		require.True(t, f.Size.LesserOrEqualThan(f.FloorType.MaxSize))
		require.Equal(t, f.Footprint(), f.Root.Bounds)

		leaves := f.Root.Leaves()
		require.Equal(t, f.Footprint().Area(), frontierArea(leaves))

		roomed := 0
		for _, l := range leaves {
			if l.Room != nil {
				require.True(t, l.Bounds.ContainsWithMargin(*l.Room))
				roomed++
			}
		}
		require.Len(t, f.Rooms, roomed)

		for j, r := range f.Rooms {
			require.Equal(t, j, r.RoomID)
			require.NotNil(t, r.Connections)
			require.Empty(t, r.Connections)
			require.True(t, f.Footprint().ContainsWithMargin(r.Bounds))
			if len(c.RoomTypes) != 0 {
				require.NotNil(t, r.RoomType)
			}
		}
	}
}

func TestGeneratorGenerate(t *testing.T) {
	c := newTestCatalog()
	g := Generator{Catalog: c}

	for seed := int64(1); seed < 100; seed++ {
		d, err := g.Generate(seed)
		require.NoError(t, err)
		require.Equal(t, seed, d.Seed)
		requireDungeonInvariants(t, c, d)

		for _, f := range d.Floors {
			require.Equal(t, "storage", f.Rooms[0].RoomType.Name)
			if d.DungeonType.Name == "keep" {
				require.Equal(t, "hall", f.FloorType.Name)
			}
		}
	}
}

func TestGeneratorDeterminism(t *testing.T) {
	g := Generator{Catalog: newTestCatalog()}

	for seed := int64(1); seed < 50; seed++ {
		a, err := g.Generate(seed)
		require.NoError(t, err)

		b, err := g.Generate(seed)
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
}

func TestGeneratorParallel(t *testing.T) {
	c := newTestCatalog()
	sequential := Generator{Catalog: c}
	parallel := Generator{Catalog: c, Parallel: true}

	for seed := int64(1); seed < 50; seed++ {
		a, err := sequential.Generate(seed)
		require.NoError(t, err)

		b, err := parallel.Generate(seed)
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
}

func TestGeneratorGoldenScenario(t *testing.T) {
	c := newGoldenCatalog()
	g := Generator{Catalog: c}

	d, err := g.Generate(12345)
	require.NoError(t, err)
	requireDungeonInvariants(t, c, d)
	require.Len(t, d.Floors, 1)

	f := d.Floors[0]
	require.Equal(t, geometry.NewVector3i(32, 1, 32), f.Size)
	require.Equal(t, int64(1064488921), f.Seed)
	require.Len(t, f.Root.Leaves(), 6)

	rooms := make([]geometry.Rect, 0, len(f.Rooms))
	for _, r := range f.Rooms {
		rooms = append(rooms, r.Bounds)
	}
	require.Equal(t, []geometry.Rect{
		geometry.NewRect(2, 1, 11, 6),
		geometry.NewRect(3, 11, 13, 6),
		geometry.NewRect(19, 3, 12, 5),
		geometry.NewRect(19, 11, 12, 9),
		geometry.NewRect(2, 23, 12, 6),
		geometry.NewRect(17, 23, 13, 7),
	}, rooms)

	again, err := g.Generate(12345)
	require.NoError(t, err)
	require.Equal(t, d, again)
}

func TestGeneratorZeroLayout(t *testing.T) {
	c := newGoldenCatalog()

	a, err := (&Generator{Catalog: c}).Generate(12345)
	require.NoError(t, err)

	b, err := (&Generator{Catalog: c, Layout: DefaultFloorLayout()}).Generate(12345)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestGeneratorTimeSeed(t *testing.T) {
	now := time.Unix(1700000000, 123456789)
	g := Generator{
		Catalog: newTestCatalog(),
		Now:     func() time.Time { return now },
	}

	a, err := g.Generate(0)
	require.NoError(t, err)
	require.NotZero(t, a.Seed)
	require.Positive(t, a.Seed)

	b, err := g.Generate(a.Seed)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestGeneratorOfType(t *testing.T) {
	g := Generator{Catalog: newTestCatalog()}

	t.Run("pinned dungeon type", func(t *testing.T) {
		for seed := int64(1); seed < 20; seed++ {
			d, err := g.GenerateOfType(seed, "mine")
			require.NoError(t, err)
			require.Equal(t, "mine", d.DungeonType.Name)
			require.GreaterOrEqual(t, len(d.Floors), 2)
		}
	})

	t.Run("unknown dungeon type", func(t *testing.T) {
		counter := generationErrorCountTotal.With(prometheus.Labels{errTypeLabel: ErrTypeUnknownDungeonType})
		before := counterValue(t, counter)

		_, err := g.GenerateOfType(1, "tower")
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeUnknownDungeonType))
		require.Equal(t, before+1, counterValue(t, counter))
	})
}

func TestGeneratorFloorTypeFallback(t *testing.T) {
	c := newTestCatalog()
	c.FloorTypes = c.FloorTypes[1:]
	c.RoomTypes = c.RoomTypes[:1]
	g := Generator{Catalog: c}

	d, err := g.GenerateOfType(5, "keep")
	require.NoError(t, err)
	for _, f := range d.Floors {
		require.Equal(t, "gallery", f.FloorType.Name)
	}
}

func TestGeneratorConfigurationErrors(t *testing.T) {
	t.Run("no catalog", func(t *testing.T) {
		_, err := (&Generator{}).Generate(1)
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeConfiguration))
	})

	t.Run("no dungeon types", func(t *testing.T) {
		c := newTestCatalog()
		c.DungeonTypes = nil

		_, err := (&Generator{Catalog: c}).Generate(1)
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeConfiguration))
	})

	t.Run("no floor types", func(t *testing.T) {
		c := newTestCatalog()
		c.FloorTypes = nil

		_, err := (&Generator{Catalog: c}).Generate(1)
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeConfiguration))
	})
}

func TestGeneratorWithoutRoomTypes(t *testing.T) {
	c := newTestCatalog()
	c.RoomTypes = nil

	d, err := (&Generator{Catalog: c}).Generate(3)
	require.NoError(t, err)
	requireDungeonInvariants(t, c, d)
	for _, f := range d.Floors {
		for _, r := range f.Rooms {
			require.Nil(t, r.RoomType)
		}
	}
}

func TestGeneratorRoomTypeSelectorKeepsGeometry(t *testing.T) {
	c := newTestCatalog()
	first := Generator{Catalog: c}
	weighted := Generator{Catalog: c, RoomTypes: WeightedRoomType{}}

	for seed := int64(1); seed < 30; seed++ {
		a, err := first.Generate(seed)
		require.NoError(t, err)

		b, err := weighted.Generate(seed)
		require.NoError(t, err)
		require.Len(t, b.Floors, len(a.Floors))

		for i := range a.Floors {
			require.Equal(t, a.Floors[i].Root, b.Floors[i].Root)
			require.Len(t, b.Floors[i].Rooms, len(a.Floors[i].Rooms))
		}
	}
}

func TestGeneratorFloorSpacing(t *testing.T) {
	g := Generator{Catalog: newTestCatalog(), FloorSpacing: 10}

	d, err := g.GenerateOfType(8, "mine")
	require.NoError(t, err)
	for i, f := range d.Floors {
		require.Equal(t, -i*10, f.Position.Y)
	}
}

func TestDungeonInstanceWithoutTrees(t *testing.T) {
	d, err := (&Generator{Catalog: newTestCatalog()}).Generate(11)
	require.NoError(t, err)

	stripped := d.WithoutTrees()
	require.Equal(t, d.RoomCount(), stripped.RoomCount())
	for i := range stripped.Floors {
		require.Nil(t, stripped.Floors[i].Root)
		require.NotNil(t, d.Floors[i].Root)
	}
}
