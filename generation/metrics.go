package generation

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	dungeonTypeLabel = "dungeon_type"
	floorTypeLabel   = "floor_type"
	errTypeLabel     = "err_type"
)

var (
	dungeonCountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dungeon_count_total",
		Help: "The total number of generated dungeons.",
	}, []string{dungeonTypeLabel})

	dungeonFloorCount = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dungeon_floor_count",
		Help:    "The number of floors per generated dungeon.",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	}, []string{dungeonTypeLabel})

	floorRoomCount = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "floor_room_count",
		Help:    "The number of rooms per generated floor.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 6),
	}, []string{floorTypeLabel})

	dungeonGenerationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dungeon_generation_latency_seconds",
		Help:    "The time taken to generate a dungeon.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{dungeonTypeLabel})

	degenerateLeafCountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "degenerate_leaf_count_total",
		Help: "The total number of leaves too small to hold a room.",
	})

	generationErrorCountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_error_count_total",
		Help: "The total number of generation errors and warnings.",
	}, []string{errTypeLabel})
)

func instrumentDungeon(d *DungeonInstance, start time.Time) {
	dungeonType := d.DungeonType.Name

	dungeonCountTotal.
		With(prometheus.Labels{dungeonTypeLabel: dungeonType}).
		Inc()

	dungeonFloorCount.
		With(prometheus.Labels{dungeonTypeLabel: dungeonType}).
		Observe(float64(len(d.Floors)))

	dungeonGenerationLatency.
		With(prometheus.Labels{dungeonTypeLabel: dungeonType}).
		Observe(time.Since(start).Seconds())
}

func instrumentFloor(f *FloorInstance) {
	floorRoomCount.
		With(prometheus.Labels{floorTypeLabel: f.FloorType.Name}).
		Observe(float64(len(f.Rooms)))
}

func instrumentDegenerateLeaf() {
	degenerateLeafCountTotal.Inc()
	generationErrorCountTotal.
		With(prometheus.Labels{errTypeLabel: ErrTypeDegenerateGeometry}).
		Inc()
}

func instrumentError(err error) {
	generationErrorCountTotal.
		With(prometheus.Labels{errTypeLabel: errors.Type(err)}).
		Inc()
}
