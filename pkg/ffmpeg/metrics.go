package ffmpeg

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transcodeDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vidforge_transcode_decisions_total",
	Help: "Transcoder policy decisions by action.",
}, []string{"action"})
