package observability

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shouni/go-cold-outreach/pkg/types"
)

const namespace = "cold_outreach"

// Metrics は、バッチ処理の結果を Prometheus のコレクターに記録します。
// batch.Recorder インターフェースを満たします。
type Metrics struct {
	registry *prometheus.Registry

	batchesStarted   prometheus.Counter
	entriesTotal     prometheus.Counter
	processedTotal   prometheus.Counter
	rejectedTotal    *prometheus.CounterVec
	entryDuration    *prometheus.HistogramVec
	lastBatchEntries prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		batchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_started_total",
			Help:      "Total number of batches started.",
		}),
		entriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "Total number of non-empty input entries submitted.",
		}),
		processedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_processed_total",
			Help:      "Total number of entries that produced a message.",
		}),
		rejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entries_rejected_total",
				Help:      "Total number of rejected entries grouped by failure kind.",
			},
			[]string{"kind"},
		),
		entryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "entry_duration_seconds",
				Help:      "Per-entry processing duration in seconds grouped by outcome.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"outcome"},
		),
		lastBatchEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_batch_entries",
			Help:      "Number of entries in the most recently started batch.",
		}),
	}

	registry.MustRegister(
		m.batchesStarted,
		m.entriesTotal,
		m.processedTotal,
		m.rejectedTotal,
		m.entryDuration,
		m.lastBatchEntries,
	)
	return m
}

func (m *Metrics) BatchStarted(total int) {
	if m == nil {
		return
	}
	m.batchesStarted.Inc()
	m.entriesTotal.Add(float64(total))
	m.lastBatchEntries.Set(float64(total))
}

func (m *Metrics) EntryProcessed(duration time.Duration) {
	if m == nil {
		return
	}
	m.processedTotal.Inc()
	m.entryDuration.WithLabelValues("processed").Observe(seconds(duration))
}

func (m *Metrics) EntryRejected(kind types.FailureKind, duration time.Duration) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(normalizeKind(kind)).Inc()
	m.entryDuration.WithLabelValues("rejected").Observe(seconds(duration))
}

// WriteTextfile は、node_exporter の textfile collector 形式でメトリクスをファイルに書き出します。
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("メトリクスの書き出しに失敗しました (path: %s): %w", path, err)
	}
	return nil
}

// Registry はテストや外部公開用にレジストリを返します。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func seconds(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return d.Seconds()
}

func normalizeKind(kind types.FailureKind) string {
	normalized := strings.ToLower(strings.TrimSpace(kind.String()))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
