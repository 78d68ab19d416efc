// Package metrics holds the Prometheus collectors for document handling.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Kind label values.
const (
	KindOrgDocument    = "org_document"
	KindMemberDocument = "member_document"
)

var (
	Conversions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "flowhub", Name: "docx_conversions_total", Help: "DOCX to HTML conversions by result."},
		[]string{"result"},
	)
	ConvertedWords = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "flowhub", Name: "docx_converted_words", Help: "Word count of converted documents.",
			Buckets: prometheus.ExponentialBuckets(100, 2, 8)},
	)
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "flowhub", Name: "document_uploads_total", Help: "Document uploads by kind and result."},
		[]string{"kind", "result"},
	)
	CleanupFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "flowhub", Name: "file_cleanup_failures_total", Help: "Best-effort file deletions that failed."},
		[]string{"kind"},
	)
)

// RegisterCollectors registers every collector with reg.
func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(Conversions)
	reg.MustRegister(ConvertedWords)
	reg.MustRegister(Uploads)
	reg.MustRegister(CleanupFailures)
}
