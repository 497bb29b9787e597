package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidforge",
		Subsystem: "acquire",
		Name:      "attempts_total",
		Help:      "Acquisition attempts by strategy.",
	}, []string{"strategy"})

	successTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidforge",
		Subsystem: "acquire",
		Name:      "success_total",
		Help:      "Successful acquisitions by strategy.",
	}, []string{"strategy"})

	authFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vidforge",
		Subsystem: "acquire",
		Name:      "auth_failures_total",
		Help:      "Direct attempts that hit an anti-automation signature.",
	})

	relayInstanceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidforge",
		Subsystem: "relay",
		Name:      "instance_failures_total",
		Help:      "Relay instance failures by instance base URL.",
	}, []string{"instance"})
)
