package node

import (
	"time"

	"github.com/NethermindEth/juno-devnet/clients/origin"
	"github.com/NethermindEth/juno-devnet/core/state"
	"github.com/prometheus/client_golang/prometheus"
)

func makeOriginMetrics(reg prometheus.Registerer) origin.EventListener {
	requestLatencies := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "origin",
		Subsystem: "client",
		Name:      "request_latency",
	}, []string{"method", "status"})
	reg.MustRegister(requestLatencies)
	return &origin.SelectiveListener{
		OnResponseCb: func(method string, err error, took time.Duration) {
			status := "ok"
			if err != nil {
				status = "error"
			}
			requestLatencies.WithLabelValues(method, status).Observe(took.Seconds())
		},
	}
}

func makeStateMetrics(reg prometheus.Registerer) state.EventListener {
	reads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devnet",
		Subsystem: "state",
		Name:      "reads_total",
	}, []string{"kind", "resolution"})
	originLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "devnet",
		Subsystem: "state",
		Name:      "origin_latency",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"kind"})
	reg.MustRegister(reads, originLatency)
	return &state.SelectiveListener{
		OnReadCb: func(kind state.Kind, resolution state.Resolution) {
			reads.WithLabelValues(kind.String(), resolution.String()).Inc()
		},
		OnOriginCallCb: func(kind state.Kind, took time.Duration) {
			originLatency.WithLabelValues(kind.String()).Observe(took.Seconds())
		},
	}
}
