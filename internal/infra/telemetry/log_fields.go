package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldTool       = "tool"
	FieldCode       = "code"
	FieldLimiter    = "limiter"
	FieldDurationMs = "duration_ms"
	FieldRequestID  = "request_id"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
)

func ToolField(tool string) zap.Field {
	return zap.String(FieldTool, tool)
}

func CodeField(code string) zap.Field {
	return zap.String(FieldCode, code)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func RequestIDField(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}

func TraceIDField(value string) zap.Field {
	return zap.String(FieldTraceID, value)
}

func SpanIDField(value string) zap.Field {
	return zap.String(FieldSpanID, value)
}
