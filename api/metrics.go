package api

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	proxyTracerName = "trip-memo/api"
	proxySpanName   = "bff.proxy"
	proxyLogMessage = "proxy.request.metrics"
)

type proxyRequestMetrics struct {
	logger           *log.Logger
	span             trace.Span
	route            string
	start            time.Time
	upstreamDuration time.Duration
	upstreamStatus   int
	cacheRead        bool
	evictedKeys      int
	errorStage       string
}

func newProxyRequestMetrics(ctx context.Context, logger *log.Logger, route string) (*proxyRequestMetrics, context.Context) {
	ctx, span := otel.Tracer(proxyTracerName).Start(ctx, proxySpanName, trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(attribute.String("http.route", route))
	return &proxyRequestMetrics{
		logger: logger,
		span:   span,
		route:  route,
		start:  time.Now(),
	}, ctx
}

func (m *proxyRequestMetrics) ObserveUpstream(duration time.Duration, status int) {
	if duration > 0 {
		m.upstreamDuration = duration
	}
	m.upstreamStatus = status
}

func (m *proxyRequestMetrics) SetCacheRead(read bool) {
	m.cacheRead = read
}

func (m *proxyRequestMetrics) SetEvictedKeys(count int) {
	if count < 0 {
		count = 0
	}
	m.evictedKeys = count
}

func (m *proxyRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

// Log ends the request span and writes one structured log line.
func (m *proxyRequestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}
	defer m.span.End()

	total := durationToMillis(time.Since(m.start))
	attrs := []attribute.KeyValue{
		attribute.Int("http.status_code", status),
		attribute.Float64("bff.total_ms", total),
		attribute.Bool("bff.cache_read", m.cacheRead),
		attribute.Int("bff.evicted_keys", m.evictedKeys),
	}
	fields := log.Fields{
		"route":        m.route,
		"status":       status,
		"total_ms":     total,
		"cache_read":   m.cacheRead,
		"evicted_keys": m.evictedKeys,
	}
	if m.upstreamStatus != 0 {
		fields["upstream_status"] = m.upstreamStatus
		attrs = append(attrs, attribute.Int("bff.upstream_status", m.upstreamStatus))
	}
	if m.upstreamDuration > 0 {
		fields["upstream_ms"] = durationToMillis(m.upstreamDuration)
		attrs = append(attrs, attribute.Float64("bff.upstream_ms", durationToMillis(m.upstreamDuration)))
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
		attrs = append(attrs, attribute.String("bff.error_stage", m.errorStage))
	}
	if err != nil {
		fields["error"] = err.Error()
		m.span.RecordError(err)
	}
	if sc := m.span.SpanContext(); sc.HasTraceID() {
		fields["trace_id"] = sc.TraceID().String()
	}
	m.span.SetAttributes(attrs...)

	severity, level := severityForStatus(status, err)
	if severity == "ERROR" {
		desc := http.StatusText(status)
		if err != nil {
			desc = err.Error()
		}
		m.span.SetStatus(codes.Error, desc)
	} else {
		m.span.SetStatus(codes.Ok, "")
	}

	if m.logger == nil {
		return
	}
	m.logger.WithFields(fields).Log(level, proxyLogMessage)
}

func severityForStatus(status int, err error) (string, log.Level) {
	switch {
	case err != nil || status >= http.StatusInternalServerError:
		return "ERROR", log.ErrorLevel
	case status >= http.StatusBadRequest:
		return "WARN", log.WarnLevel
	default:
		return "INFO", log.InfoLevel
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
