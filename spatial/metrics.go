package spatial

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	reasonLabel = "reason"
	queryLabel  = "query"

	metricsRebuildManual    = "manual"
	metricsRebuildResize    = "resize"
	metricsRebuildThreshold = "threshold"

	metricsQueryPoint = "point"
	metricsQueryRange = "range"
)

var (
	spatialIndexRebuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spatial_index_rebuilds",
		Help: "The number of spatial index rebuilds.",
	}, []string{reasonLabel})

	spatialIndexQuerySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spatial_index_query_seconds",
		Help:    "The time to answer a spatial index query.",
		Buckets: prometheus.DefBuckets,
	}, []string{queryLabel})
)

func instrumentIndexRebuild(reason string) {
	spatialIndexRebuilds.
		With(prometheus.Labels{reasonLabel: reason}).
		Inc()
}

func instrumentIndexQuery(query string, start time.Time) {
	spatialIndexQuerySeconds.
		With(prometheus.Labels{queryLabel: query}).
		Observe(time.Since(start).Seconds())
}
