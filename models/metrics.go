package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	dungeonTypeLabel = "dungeon_type"
)

var (
	storedDungeonCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stored_dungeon_count",
		Help: "The number of dungeons kept in memory.",
	}, []string{dungeonTypeLabel})

	storedDungeonCountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stored_dungeon_count_total",
		Help: "The total number of dungeons added to the store.",
	}, []string{dungeonTypeLabel})
)

func instrumentIncreaseDungeonGauge(dungeonType string) {
	storedDungeonCount.
		With(prometheus.Labels{dungeonTypeLabel: dungeonType}).
		Inc()
}

func instrumentDecreaseDungeonGauge(dungeonType string) {
	storedDungeonCount.
		With(prometheus.Labels{dungeonTypeLabel: dungeonType}).
		Dec()
}

func instrumentCountStoredDungeon(dungeonType string) {
	storedDungeonCountTotal.
		With(prometheus.Labels{dungeonTypeLabel: dungeonType}).
		Inc()
}
