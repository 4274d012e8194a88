package sqlite

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var archivedDungeonCountTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "archived_dungeon_count_total",
	Help: "The total number of dungeons written to the archive.",
})

func instrumentArchivedDungeon() {
	archivedDungeonCountTotal.Inc()
}
