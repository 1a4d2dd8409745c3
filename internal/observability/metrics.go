// Package observability centralises the prometheus instruments exposed on
// /metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application instruments. A nil *Metrics is valid and
// records nothing, so one-shot tools can skip registration.
type Metrics struct {
	UploadsTotal       *prometheus.CounterVec
	UploadBytes        prometheus.Counter
	UploadDuration     prometheus.Histogram
	WatchSubscriptions prometheus.Gauge
	SnapshotsDelivered prometheus.Counter
}

// NewMetrics creates and registers the instruments.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldreport_uploads_total",
			Help: "File uploads by outcome.",
		}, []string{"outcome"}),
		UploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fieldreport_upload_bytes_total",
			Help: "Total bytes uploaded to object storage.",
		}),
		UploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fieldreport_upload_duration_seconds",
			Help:    "Duration of attachment upload pipelines.",
			Buckets: prometheus.DefBuckets,
		}),
		WatchSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fieldreport_watch_subscriptions",
			Help: "Open live subscriptions.",
		}),
		SnapshotsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fieldreport_watch_snapshots_total",
			Help: "Snapshots delivered to live subscriptions.",
		}),
	}
	reg.MustRegister(m.UploadsTotal, m.UploadBytes, m.UploadDuration,
		m.WatchSubscriptions, m.SnapshotsDelivered)
	return m
}

// ObserveUpload records one finished upload pipeline.
func (m *Metrics) ObserveUpload(outcome string, bytes int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UploadsTotal.WithLabelValues(outcome).Inc()
	m.UploadBytes.Add(float64(bytes))
	m.UploadDuration.Observe(elapsed.Seconds())
}

// SubscriptionOpened tracks a new live subscription.
func (m *Metrics) SubscriptionOpened() {
	if m == nil {
		return
	}
	m.WatchSubscriptions.Inc()
}

// SubscriptionClosed tracks a finished live subscription.
func (m *Metrics) SubscriptionClosed() {
	if m == nil {
		return
	}
	m.WatchSubscriptions.Dec()
}

// SnapshotDelivered counts one delivered snapshot.
func (m *Metrics) SnapshotDelivered() {
	if m == nil {
		return
	}
	m.SnapshotsDelivered.Inc()
}
