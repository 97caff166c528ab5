package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngestionRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docingest_runs_total",
			Help: "Total number of mailbox ingestion runs",
		},
		[]string{"status"}, // succeeded, partial, failed, timed_out
	)

	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docingest_messages_total",
			Help: "Total number of messages handled by ingestion runs",
		},
		[]string{"outcome"}, // success, partial, no-attachments, skipped
	)

	DocumentsUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docingest_documents_uploaded_total",
			Help: "Total number of attachments uploaded and registered as documents",
		},
	)

	AttachmentsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docingest_attachments_rejected_total",
			Help: "Total number of attachments rejected by the admission policy",
		},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docingest_run_duration_seconds",
			Help:    "Mailbox ingestion run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.5m
		},
		[]string{"status"},
	)
)

const OutcomeSkipped = "skipped"

func RecordRun(status string, duration time.Duration) {
	IngestionRuns.WithLabelValues(status).Inc()
	RunDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func IncrementMessages(outcome string) {
	MessagesProcessed.WithLabelValues(outcome).Inc()
}

func AddDocumentsUploaded(n int) {
	if n > 0 {
		DocumentsUploaded.Add(float64(n))
	}
}

func AddAttachmentsRejected(n int) {
	if n > 0 {
		AttachmentsRejected.Add(float64(n))
	}
}
