// Package smoketest runs a reference generation and checks that it is
// reproducible and well formed.
package smoketest

import (
	"context"
	"net/http"
	"time"

	"github.com/aukilabs/dvergr/catalog"
	"github.com/aukilabs/dvergr/codec"
	"github.com/aukilabs/dvergr/generation"
	"github.com/aukilabs/dvergr/geometry"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
)

const (
	// GoldenSeed is the seed of the reference generation.
	GoldenSeed = 12345

	StatusSuccess = "success"
	StatusFailed  = "failed"

	ErrTypeSmokeTest = "smoke_test_failed"
)

// GoldenCatalog returns the catalog of the reference generation: one dungeon
// type with a single 32x1x32 floor.
func GoldenCatalog() *catalog.Catalog {
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

type Options struct {
	// The floor layout under test. The zero value uses
	// generation.DefaultFloorLayout.
	Layout generation.FloorLayout

	// Lays out floors concurrently.
	Parallel bool

	// Called with every result. Optional.
	SendResult func(context.Context, Results) error
}

// Results is the outcome of a smoke test.
type Results struct {
	Status          string  `json:"status"`
	Seed            int64   `json:"seed"`
	Fingerprint     string  `json:"fingerprint,omitempty"`
	Floors          int     `json:"floors"`
	Leaves          int     `json:"leaves"`
	Rooms           int     `json:"rooms"`
	LatencyMilliSec float64 `json:"latency_ms"`
	Error           string  `json:"error,omitempty"`
}

// Run generates the reference dungeon twice and checks that both runs have
// the same fingerprint and satisfy the layout invariants.
func Run(ctx context.Context, opts Options) (Results, error) {
	start := time.Now()
	res := Results{
		Status: StatusFailed,
		Seed:   GoldenSeed,
	}

	err := run(ctx, opts, &res)
	res.LatencyMilliSec = float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		res.Error = err.Error()
		return res, err
	}

	res.Status = StatusSuccess
	return res, nil
}

func run(ctx context.Context, opts Options, res *Results) error {
	layout := opts.Layout
	if layout == (generation.FloorLayout{}) {
		layout = generation.DefaultFloorLayout()
	}

	g := generation.Generator{
		Catalog:  GoldenCatalog(),
		Layout:   layout,
		Parallel: opts.Parallel,
	}

	var fingerprints [2]string
	var d *generation.DungeonInstance

	for i := range fingerprints {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		if d, err = g.Generate(GoldenSeed); err != nil {
			return errors.New("generating reference dungeon failed").
				WithType(ErrTypeSmokeTest).
				Wrap(err)
		}

		if fingerprints[i], err = codec.Fingerprint(d); err != nil {
			return err
		}
	}

	res.Fingerprint = fingerprints[0]
	res.Floors = len(d.Floors)
	res.Rooms = d.RoomCount()
	for _, f := range d.Floors {
		res.Leaves += len(f.Root.Leaves())
	}

	if fingerprints[0] != fingerprints[1] {
		return errors.New("reference dungeon is not reproducible").
			WithType(ErrTypeSmokeTest).
			WithTag("first", fingerprints[0]).
			WithTag("second", fingerprints[1])
	}

	return Check(d, layout)
}

// HandleSmokeTest runs a smoke test and writes its results. The status code is
// 200 when the test passes and 500 otherwise.
func HandleSmokeTest(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := Run(r.Context(), opts)
		if err != nil {
			logs.Warn(errors.New("smoke test failed").Wrap(err))
		}

		if opts.SendResult != nil {
			if err := opts.SendResult(r.Context(), res); err != nil {
				logs.Warn(errors.New("sending smoke test result failed").Wrap(err))
			}
		}

		status := http.StatusOK
		if res.Status != StatusSuccess {
			status = http.StatusInternalServerError
		}

		b, _ := json.Marshal(res)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(b)
	}
}
