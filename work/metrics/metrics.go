package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProbesTotal counts completed liveness probes.
// The "result" label is live or dead; "kind" is hls-master, hls-media, direct or none.
var ProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "m3u_parser_probes_total",
	Help: "Number of liveness probes by result and stream kind",
}, []string{"result", "kind"})

// ProbeDuration observes the wall time of a probe including retries.
var ProbeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "m3u_parser_probe_duration_seconds",
	Help:    "Duration of liveness probes including retries",
	Buckets: prometheus.DefBuckets,
})

// ProbeCacheHits counts probes answered from the result cache.
var ProbeCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "m3u_parser_probe_cache_hits_total",
	Help: "Number of probes served from the result cache",
})

// ParsesTotal counts parse runs by result (ok, empty).
var ParsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "m3u_parser_parses_total",
	Help: "Number of playlist parses by result",
}, []string{"result"})

// ParseDuration observes the wall time of a parse.
var ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "m3u_parser_parse_duration_seconds",
	Help:    "Duration of playlist parses",
	Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
})

// Records tracks how many records the most recent parse produced.
var Records = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "m3u_parser_records",
	Help: "Number of records produced by the last parse",
})

// Sessions tracks the number of playlists held by the HTTP API.
var Sessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "m3u_parser_sessions",
	Help: "Number of playlist sessions held by the API",
})
