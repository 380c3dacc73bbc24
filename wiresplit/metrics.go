package wiresplit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var wireSplitCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wire_splits_total",
	Help: "The total number of wires split in two.",
})

func instrumentWireSplit() {
	wireSplitCount.Inc()
}
