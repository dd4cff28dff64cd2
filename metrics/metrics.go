// Package metrics exposes Prometheus collectors for indexing and search.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "imagesearch"

var (
	FilesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Files seen by the scanner by outcome",
		},
		[]string{"status"}, // "indexed" / "duplicate" / "skipped" / "failed"
	)

	FingerprintDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fingerprint_duration_seconds",
			Help:      "Time to decode an image and compute its fingerprint",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	EngineDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_dispatch_total",
			Help:      "Engine invocations by stage and execution strategy",
		},
		[]string{"stage", "strategy"},
	)

	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Similarity queries by outcome",
		},
		[]string{"status"},
	)

	QueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Similarity query duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	CorpusSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_fingerprints",
			Help:      "Number of fingerprints read from the corpus store by the last query",
		},
	)
)

var registerOnce sync.Once

// Register adds all collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			FilesProcessedTotal,
			FingerprintDuration,
			EngineDispatchTotal,
			QueriesTotal,
			QueryDuration,
			CorpusSize,
		)
	})
}

// RecordFile counts one scanned file with the given outcome.
func RecordFile(status string) {
	FilesProcessedTotal.WithLabelValues(status).Inc()
}

// RecordDispatch counts one engine invocation.
func RecordDispatch(stage, strategy string) {
	EngineDispatchTotal.WithLabelValues(stage, strategy).Inc()
}

// ObserveQuery records a finished query.
func ObserveQuery(start time.Time, corpusSize int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	QueriesTotal.WithLabelValues(status).Inc()
	QueryDuration.Observe(time.Since(start).Seconds())
	if err == nil {
		CorpusSize.Set(float64(corpusSize))
	}
}

// WriteTextfile writes the default registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
