package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordRender records one pipeline run as a child span of the request
func (m *SentryMetrics) RecordRender(ctx context.Context, stats RenderStats) {
	if !m.enabled {
		return
	}

	// Tag the request transaction so renders can be filtered in the UI
	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("chipwave.source", stats.Source)
		transaction.SetTag("chipwave.encoding", stats.Encoding)
	}

	span := sentry.StartSpan(ctx, "render.pipeline")
	defer span.Finish()

	span.SetTag("source", stats.Source)
	span.SetTag("success", fmt.Sprintf("%t", stats.Success))
	span.SetTag("length_mismatch", fmt.Sprintf("%t", stats.LengthMismatch))

	span.SetData("duration_ms", stats.Duration.Milliseconds())
	span.SetData("samples", stats.Samples)
	span.SetData("clipped_samples", stats.ClippedSamples)

	if stats.Success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInvalidArgument
	}
	span.Description = fmt.Sprintf("Render: %s", stats.Source)
}
