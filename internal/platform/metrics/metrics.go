// Package metrics holds the process wide prometheus collectors
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PacketsTotal counts scanner packets accepted into a session queue
	PacketsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipscan_packets_total",
		Help: "Scanner packets accepted into a session queue",
	})

	// PacketsDroppedTotal counts packets dropped while a duplicate block was active
	PacketsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipscan_packets_dropped_total",
		Help: "Scanner packets dropped while input was blocked",
	})

	// CommitsTotal counts scan rows written, split by whether a marking code was attached
	CommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipscan_commits_total",
		Help: "Scan rows committed to the store",
	}, []string{"with_code"})

	// RejectsTotal counts refused packets by reject code
	RejectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipscan_rejects_total",
		Help: "Scanner packets rejected by reason",
	}, []string{"reason"})

	// CommitDuration tracks store round trips for a single commit
	CommitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shipscan_commit_duration_seconds",
		Help:    "Duration of a scan row commit",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	// SessionsLive is the number of open scanning sessions
	SessionsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shipscan_sessions_live",
		Help: "Open scanning sessions",
	})

	// JournalWrittenTotal counts events written to the scan journal
	JournalWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipscan_journal_written_total",
		Help: "Scan events written to the journal",
	})

	// JournalDroppedTotal counts events the journal could not keep
	JournalDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipscan_journal_dropped_total",
		Help: "Scan events dropped by the journal",
	}, []string{"cause"})
)

// Handler serves the default registry in the text exposition format
func Handler() http.Handler { return promhttp.Handler() }
