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
	tracerName          = "kanban/api"
	commandsSpanName    = "kanban.commands"
	commandsEventName   = "kanban.commands.request"
	commandsEventDomain = "kanban.board"
	observabilityEvent  = "observability.event"
)

// commandRequestMetrics records one POST /api/commands request as a span with
// an observability event, mirrored to the structured log.
type commandRequestMetrics struct {
	logger *log.Logger
	span   trace.Span
	start  time.Time

	decodeDuration time.Duration
	applyDuration  time.Duration
	commands       int
	applied        int
	duplicates     int
	failed         int
	notices        int
	errorStage     string
}

func newCommandRequestMetrics(ctx context.Context, logger *log.Logger) (*commandRequestMetrics, context.Context) {
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, commandsSpanName, trace.WithSpanKind(trace.SpanKindServer))
	return &commandRequestMetrics{
		logger: logger,
		span:   span,
		start:  time.Now(),
	}, spanCtx
}

func (m *commandRequestMetrics) ObserveDecode(d time.Duration) {
	if d > 0 {
		m.decodeDuration = d
	}
}

func (m *commandRequestMetrics) ObserveApply(d time.Duration) {
	if d > 0 {
		m.applyDuration = d
	}
}

func (m *commandRequestMetrics) SetCommands(n int) {
	if n < 0 {
		n = 0
	}
	m.commands = n
}

func (m *commandRequestMetrics) CountResult(res commandResult) {
	switch {
	case res.Duplicate:
		m.duplicates++
	case res.Error != "":
		m.failed++
	case res.Applied:
		m.applied++
	}
	if res.Notice != nil {
		m.notices++
	}
}

func (m *commandRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *commandRequestMetrics) attributes(status int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.route", "/api/commands"),
		attribute.Int("http.status_code", status),
		attribute.Float64("kanban.commands.total_ms", durationToMillis(time.Since(m.start))),
		attribute.Int("kanban.commands.count", m.commands),
		attribute.Int("kanban.commands.applied", m.applied),
		attribute.Int("kanban.commands.duplicates", m.duplicates),
		attribute.Int("kanban.commands.failed", m.failed),
		attribute.Int("kanban.commands.notices", m.notices),
	}
	if m.decodeDuration > 0 {
		attrs = append(attrs, attribute.Float64("kanban.commands.decode_ms", durationToMillis(m.decodeDuration)))
	}
	if m.applyDuration > 0 {
		attrs = append(attrs, attribute.Float64("kanban.commands.apply_ms", durationToMillis(m.applyDuration)))
	}
	if m.errorStage != "" {
		attrs = append(attrs, attribute.String("kanban.commands.error_stage", m.errorStage))
	}
	return attrs
}

// Log ends the span and emits the observability event.
func (m *commandRequestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}
	severityText, severityNumber := severityForStatus(status, err)
	attrs := m.attributes(status)

	eventAttrs := append([]attribute.KeyValue{
		attribute.String("event.name", commandsEventName),
		attribute.String("event.domain", commandsEventDomain),
		attribute.String("severity_text", severityText),
		attribute.Int("severity_number", severityNumber),
	}, attrs...)
	if err != nil {
		eventAttrs = append(eventAttrs, attribute.String("error.message", err.Error()))
	}

	if m.span != nil {
		m.span.SetAttributes(attrs...)
		m.span.AddEvent(observabilityEvent, trace.WithAttributes(eventAttrs...))
		if err != nil || status >= http.StatusInternalServerError {
			desc := http.StatusText(status)
			if err != nil {
				desc = err.Error()
			}
			m.span.SetStatus(codes.Error, desc)
		} else {
			m.span.SetStatus(codes.Ok, "")
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}
	attrMap := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		attrMap[string(kv.Key)] = kv.Value.AsInterface()
	}
	fields := log.Fields{
		"event.name":      commandsEventName,
		"event.domain":    commandsEventDomain,
		"severity_text":   severityText,
		"severity_number": severityNumber,
		"attributes":      attrMap,
	}
	if m.span != nil {
		if sc := m.span.SpanContext(); sc.HasTraceID() {
			fields["trace_id"] = sc.TraceID().String()
			fields["span_id"] = sc.SpanID().String()
		}
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	entry := m.logger.WithFields(fields)
	switch severityText {
	case "ERROR":
		entry.Error(observabilityEvent)
	case "WARN":
		entry.Warn(observabilityEvent)
	default:
		entry.Info(observabilityEvent)
	}
}

// severityForStatus maps a response to OpenTelemetry log severity text and
// number.
func severityForStatus(status int, err error) (string, int) {
	switch {
	case err != nil || status >= http.StatusInternalServerError:
		return "ERROR", 17
	case status >= http.StatusBadRequest:
		return "WARN", 13
	default:
		return "INFO", 9
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
