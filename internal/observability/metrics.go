package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swiftgen",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "swiftgen",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	encodeBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swiftgen",
			Subsystem: "encode",
			Name:      "batches_total",
			Help:      "Encode batch calls by format and outcome.",
		},
		[]string{"format", "success"},
	)
	encodeMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swiftgen",
			Subsystem: "encode",
			Name:      "messages_total",
			Help:      "Messages encoded, split by network wrapping result.",
		},
		[]string{"format", "network"},
	)
	encodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "swiftgen",
			Subsystem: "encode",
			Name:      "batch_duration_seconds",
			Help:      "Encode batch duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"format"},
	)
	validatedFiles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swiftgen",
			Subsystem: "validate",
			Name:      "files_total",
			Help:      "Validated input files by extraction mode and outcome.",
		},
		[]string{"mode", "valid"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, encodeBatches, encodeMessages, encodeDuration, validatedFiles)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordEncode counts one batch call. wrapped and fallbacks are subsets of
// messages.
func RecordEncode(format string, messages, wrapped, fallbacks int, duration time.Duration, success bool) {
	RegisterMetrics()
	encodeBatches.WithLabelValues(format, strconv.FormatBool(success)).Inc()
	if !success {
		return
	}
	plain := messages - wrapped - fallbacks
	encodeMessages.WithLabelValues(format, "none").Add(float64(plain))
	encodeMessages.WithLabelValues(format, "wrapped").Add(float64(wrapped))
	encodeMessages.WithLabelValues(format, "fallback").Add(float64(fallbacks))
	encodeDuration.WithLabelValues(format).Observe(duration.Seconds())
}

func RecordValidatedFile(mode string, valid bool) {
	RegisterMetrics()
	validatedFiles.WithLabelValues(mode, strconv.FormatBool(valid)).Inc()
}
