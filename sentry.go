// Package sentryzapreporter forwards zap log entries and program panics to Sentry.
//
// Error entries become Sentry events or breadcrumbs depending on the policy picked
// at installation, everything else is kept as breadcrumbs attached to the next event.
package sentryzapreporter

import (
	"context"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap/zapcore"
)

const (
	breadcrumbType     = "log"
	breadcrumbCategory = "log"
	maxErrorDepth      = 10
)

// Ensure SentryCore implements zapcore.Core interface
var _ zapcore.Core = (*SentryCore)(nil)

// SentryCore is a zapcore.Core that classifies every entry into a Sentry event or a breadcrumb.
// It keeps no mutable state and is safe for concurrent use.
type SentryCore struct {
	zapcore.LevelEnabler
	session    *Session
	panicsOnly bool
	stackTrace bool
	fields     map[string]interface{}
	ctx        context.Context
	logs       *logForwarder
}

func newSentryCore(session *Session, panicsOnly bool, s *settings) *SentryCore {
	c := &SentryCore{
		LevelEnabler: s.level,
		session:      session,
		panicsOnly:   panicsOnly,
		stackTrace:   s.stackTrace,
	}

	if s.logs {
		c.logs = newLogForwarder(session.hub, s.logsLevel)
	}

	return c
}

// With adds structured context to the Core. It implements zapcore.Core interface.
func (c *SentryCore) With(fields []zapcore.Field) zapcore.Core {
	encoded := encodeFields(fields)

	clone := *c
	clone.fields = c.mergeFields(encoded.values)

	if encoded.ctx != nil {
		clone.ctx = encoded.ctx
	}

	if c.logs != nil {
		clone.logs = c.logs.with(encoded.ctx, encoded.values)
	}

	return &clone
}

// Check determines whether the supplied Entry should be logged.
// It implements zapcore.Core interface.
func (c *SentryCore) Check(entry zapcore.Entry, checkEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checkEntry.AddCore(entry, c)
	}

	return checkEntry
}

// Write reports the entry as an event or records it as a breadcrumb.
// Delivery is left to the sentry client, so Write never fails.
func (c *SentryCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	encoded := encodeFields(fields)

	ctx := encoded.ctx
	if ctx == nil {
		ctx = c.ctx
	}

	hub := c.hubFor(ctx)
	data := c.mergeFields(encoded.values)

	if entry.Caller.Defined {
		data["caller.file"] = entry.Caller.File
		data["caller.line"] = entry.Caller.Line
	}

	if c.escalates(entry.Level) {
		hub.CaptureEvent(c.eventFromEntry(entry, data, encoded.errs))
	} else {
		hub.AddBreadcrumb(breadcrumbFromEntry(entry, data), nil)
	}

	if c.logs != nil {
		c.logs.write(encoded.ctx, entry, encoded.values)
	}

	// os.Exit follows a fatal entry and skips every deferred Recover.
	if entry.Level == zapcore.FatalLevel {
		hub.Flush(c.session.flushTimeout)
	}

	return nil
}

// Sync flushes buffered events. It implements zapcore.Core interface.
func (c *SentryCore) Sync() error {
	c.session.flush()
	return nil
}

// escalates reports whether an entry of the given level becomes an event.
// Panic entries stay breadcrumbs: the panic that follows is reported by Recover.
func (c *SentryCore) escalates(level zapcore.Level) bool {
	switch level {
	case zapcore.FatalLevel:
		return true
	case zapcore.ErrorLevel, zapcore.DPanicLevel:
		return !c.panicsOnly
	default:
		return false
	}
}

func (c *SentryCore) hubFor(ctx context.Context) *sentry.Hub {
	if ctx != nil {
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			return hub
		}
	}

	return c.session.hub
}

func (c *SentryCore) mergeFields(values map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(c.fields)+len(values))

	for k, v := range c.fields {
		merged[k] = v
	}

	for k, v := range dataFromValues(values) {
		merged[k] = v
	}

	return merged
}

func (c *SentryCore) eventFromEntry(entry zapcore.Entry, data map[string]interface{}, errs []error) *sentry.Event {
	event := sentry.NewEvent()
	event.Level = sentryLevel(entry.Level)
	event.Message = entry.Message
	event.Timestamp = entry.Time
	event.Logger = entry.LoggerName
	event.Extra = data

	if c.stackTrace {
		attachStackTrace(event, errs)
	}

	return event
}

func attachStackTrace(event *sentry.Event, errs []error) {
	if len(errs) == 0 {
		event.Threads = []sentry.Thread{{Stacktrace: sentry.NewStacktrace(), Current: true}}
		return
	}

	event.SetException(errs[0], maxErrorDepth)

	if n := len(event.Exception); n > 0 && event.Exception[n-1].Stacktrace == nil {
		event.Exception[n-1].Stacktrace = sentry.NewStacktrace()
	}
}

func breadcrumbFromEntry(entry zapcore.Entry, data map[string]interface{}) *sentry.Breadcrumb {
	category := entry.LoggerName
	if category == "" {
		category = breadcrumbCategory
	}

	return &sentry.Breadcrumb{
		Type:      breadcrumbType,
		Category:  category,
		Message:   entry.Message,
		Data:      data,
		Level:     sentryLevel(entry.Level),
		Timestamp: entry.Time,
	}
}

func sentryLevel(level zapcore.Level) sentry.Level {
	switch level {
	case zapcore.DebugLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel, zapcore.DPanicLevel:
		return sentry.LevelError
	case zapcore.PanicLevel, zapcore.FatalLevel:
		return sentry.LevelFatal
	default:
		return sentry.LevelError
	}
}
