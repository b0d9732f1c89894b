package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var updatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "bot",
		Subsystem: "router",
		Name:      "updates_total",
		Help:      "Inbound updates partitioned by kind.",
	},
	[]string{"kind"},
)
