package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aukilabs/dvergr/catalog"
	"github.com/aukilabs/dvergr/generation"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestArchive(t *testing.T) *Archive {
	a, err := Open(context.Background(), filepath.Join(t.TempDir(), "dungeons.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func newTestRecord(t *testing.T, seed int64, createdAt time.Time) Record {
	g := generation.Generator{Catalog: catalog.Default()}
	d, err := g.Generate(seed)
	require.NoError(t, err)

	return Record{
		UUID:        uuid.NewString(),
		Seed:        d.Seed,
		DungeonType: d.DungeonType.Name,
		Fingerprint: "0xfingerprint",
		Floors:      len(d.Floors),
		Rooms:       d.RoomCount(),
		Dungeon:     d,
		CreatedAt:   createdAt,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), " ")
	require.Error(t, err)
	require.True(t, errors.IsType(err, ErrTypeArchive))
}

func TestArchiveSaveGet(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	r := newTestRecord(t, 21, time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC))
	require.NoError(t, a.Save(ctx, r))

	got, err := a.Get(ctx, r.UUID)
	require.NoError(t, err)
	require.Equal(t, r.UUID, got.UUID)
	require.Equal(t, r.Seed, got.Seed)
	require.Equal(t, r.DungeonType, got.DungeonType)
	require.Equal(t, r.Fingerprint, got.Fingerprint)
	require.Equal(t, r.Floors, got.Floors)
	require.Equal(t, r.Rooms, got.Rooms)
	require.Equal(t, r.CreatedAt, got.CreatedAt)
	require.Len(t, got.Dungeon.Floors, len(r.Dungeon.Floors))

	for i, f := range got.Dungeon.Floors {
		require.Nil(t, f.Root)
		require.Equal(t, r.Dungeon.Floors[i].Size, f.Size)
		require.Equal(t, len(r.Dungeon.Floors[i].Rooms), len(f.Rooms))
	}
}

func TestArchiveSaveDuplicate(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	r := newTestRecord(t, 21, time.Now())
	require.NoError(t, a.Save(ctx, r))

	err := a.Save(ctx, r)
	require.Error(t, err)
	require.True(t, errors.IsType(err, ErrTypeAlreadyExists))
}

func TestArchiveGetNotFound(t *testing.T) {
	_, err := openTestArchive(t).Get(context.Background(), uuid.NewString())
	require.Error(t, err)
	require.True(t, errors.IsType(err, ErrTypeNotFound))
}

func TestArchiveListBySeed(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)
	start := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)

	first := newTestRecord(t, 5, start)
	second := newTestRecord(t, 5, start.Add(time.Minute))
	other := newTestRecord(t, 6, start)

	require.NoError(t, a.Save(ctx, second))
	require.NoError(t, a.Save(ctx, other))
	require.NoError(t, a.Save(ctx, first))

	records, err := a.ListBySeed(ctx, 5)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, first.UUID, records[0].UUID)
	require.Equal(t, second.UUID, records[1].UUID)

	records, err = a.ListBySeed(ctx, 404)
	require.NoError(t, err)
	require.Empty(t, records)
}
