package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	appKeyLabel = "app_key"
)

var (
	skissaSessionCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "session_count",
		Help: "The number of sessions.",
	}, []string{appKeyLabel})

	skissaSessionCountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_count_total",
		Help: "The total number of sessions.",
	}, []string{appKeyLabel})

	skissaElementCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "element_count",
		Help: "The number of schematic elements.",
	}, []string{appKeyLabel})

	skissaElementCountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "element_count_total",
		Help: "The total number of schematic elements created.",
	}, []string{appKeyLabel})
)

func instrumentIncreaseSessionGauge(appKey string) {
	skissaSessionCount.
		With(prometheus.Labels{appKeyLabel: appKey}).
		Inc()
}

func instrumentDecreaseSessionGauge(appKey string) {
	skissaSessionCount.
		With(prometheus.Labels{appKeyLabel: appKey}).
		Dec()
}

func instrumentCountSession(appKey string) {
	skissaSessionCountTotal.
		With(prometheus.Labels{appKeyLabel: appKey}).
		Inc()
}

func instrumentIncreaseElementGauge(appKey string) {
	skissaElementCount.
		With(prometheus.Labels{appKeyLabel: appKey}).
		Inc()
}

func instrumentDecreaseElementGauge(appKey string) {
	skissaElementCount.
		With(prometheus.Labels{appKeyLabel: appKey}).
		Dec()
}

func instrumentCountElement(appKey string) {
	skissaElementCountTotal.
		With(prometheus.Labels{appKeyLabel: appKey}).
		Inc()
}

// instrumentFlushElementGauge drops the elements of a removed session
// from the gauge in one step.
func instrumentFlushElementGauge(appKey string, count int) {
	skissaElementCount.
		With(prometheus.Labels{appKeyLabel: appKey}).
		Sub(float64(count))
}
