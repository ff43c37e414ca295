package sentryzapreporter

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"go.uber.org/zap/zapcore"
)

// logForwarder mirrors entries into Sentry structured logs.
type logForwarder struct {
	zapcore.LevelEnabler
	hub        *sentry.Hub
	ctx        context.Context
	logger     sentry.Logger
	attributes []attribute.Builder
}

func newLogForwarder(hub *sentry.Hub, level zapcore.Level) *logForwarder {
	ctx := sentry.SetHubOnContext(context.Background(), hub)

	return &logForwarder{
		LevelEnabler: level,
		hub:          hub,
		ctx:          ctx,
		logger:       sentry.NewLogger(ctx),
	}
}

func (f *logForwarder) bind(ctx context.Context) context.Context {
	if sentry.GetHubFromContext(ctx) != nil {
		return ctx
	}

	return sentry.SetHubOnContext(ctx, f.hub)
}

func (f *logForwarder) with(ctx context.Context, values map[string]interface{}) *logForwarder {
	if ctx == nil {
		ctx = f.ctx
	} else {
		ctx = f.bind(ctx)
	}

	attrs := append([]attribute.Builder(nil), f.attributes...)
	attrs = append(attrs, attributesFromValues(values)...)

	logger := sentry.NewLogger(ctx)
	if len(attrs) > 0 {
		logger.SetAttributes(attrs...)
	}

	return &logForwarder{
		LevelEnabler: f.LevelEnabler,
		hub:          f.hub,
		ctx:          ctx,
		logger:       logger,
		attributes:   attrs,
	}
}

func (f *logForwarder) write(ctx context.Context, entry zapcore.Entry, values map[string]interface{}) {
	if !f.Enabled(entry.Level) {
		return
	}

	logEntry := logEntryForLevel(f.logger, entry.Level)
	if ctx != nil {
		logEntry = logEntry.WithCtx(f.bind(ctx))
	}

	for k, v := range values {
		logEntry = applyValueToLogEntry(logEntry, k, v)
	}

	if entry.LoggerName != "" {
		logEntry = logEntry.String("logger", entry.LoggerName)
	}

	if entry.Caller.Defined {
		logEntry = logEntry.String("caller.file", entry.Caller.File)
		logEntry = logEntry.Int("caller.line", entry.Caller.Line)
	}

	logEntry.Emit(entry.Message)
}

// Panic and fatal map to error: the sentry logger would otherwise panic or exit itself.
func logEntryForLevel(logger sentry.Logger, level zapcore.Level) sentry.LogEntry {
	switch level {
	case zapcore.DebugLevel:
		return logger.Debug()
	case zapcore.InfoLevel:
		return logger.Info()
	case zapcore.WarnLevel:
		return logger.Warn()
	default:
		return logger.Error()
	}
}
