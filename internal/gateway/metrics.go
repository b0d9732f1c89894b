package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sendsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "bot",
		Subsystem: "gateway",
		Name:      "sends_total",
		Help:      "Outbound send attempts partitioned by kind and outcome.",
	},
	[]string{"kind", "outcome"},
)
