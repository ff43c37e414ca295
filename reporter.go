package sentryzapreporter

import (
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const executableTag = "executable"

// Reporter wires a Session and its classifier into zap.
// A disabled Reporter (no DSN configured) is a passthrough for every method.
type Reporter struct {
	session *Session
	core    *SentryCore
}

// PanicReporter reports panics only. Log entries, errors included, become breadcrumbs.
func PanicReporter(options ...Option) (*Reporter, error) {
	return newReporter(true, "", options)
}

// ErrorReporter reports panics and error entries. Other entries become breadcrumbs.
func ErrorReporter(options ...Option) (*Reporter, error) {
	return newReporter(false, "", options)
}

// NewReporter reports panics, and error entries unless panicsOnly is set.
// The release defaults to name@version of the main module taken from the build info.
func NewReporter(panicsOnly bool, options ...Option) (*Reporter, error) {
	return newReporter(panicsOnly, buildRelease(), options)
}

func newReporter(panicsOnly bool, defaultRelease string, options []Option) (*Reporter, error) {
	s := newSettings(options)

	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}

	if !cfg.Enabled() {
		s.logger.Debug("sentry reporting disabled, SENTRY_DSN is not set")
		return &Reporter{}, nil
	}

	release := s.release
	if release == "" {
		release = cfg.Release
	}

	if release == "" {
		release = defaultRelease
	}

	session, err := newSession(cfg, s, release)
	if err != nil {
		return nil, err
	}

	executable := executableName()
	if s.executable != nil {
		executable = *s.executable
	}

	if executable != "" {
		session.setTag(executableTag, executable)
	}

	s.logger.Info("sentry reporting enabled",
		zap.Bool("panics_only", panicsOnly),
		zap.String("executable", executable),
		zap.String("release", release),
	)

	return &Reporter{
		session: session,
		core:    newSentryCore(session, panicsOnly, s),
	}, nil
}

func (s *settings) loadConfig() (Config, error) {
	if s.config != nil {
		return *s.config, nil
	}

	return LoadConfig()
}

// Enabled reports whether events are sent anywhere.
func (r *Reporter) Enabled() bool {
	return r != nil && r.session != nil
}

// Session returns the session handle, nil when disabled.
func (r *Reporter) Session() *Session {
	if !r.Enabled() {
		return nil
	}

	return r.session
}

// Hub returns the session hub, nil when disabled.
func (r *Reporter) Hub() *sentry.Hub {
	if !r.Enabled() {
		return nil
	}

	return r.session.hub
}

// Core returns the classifier, nil when disabled.
func (r *Reporter) Core() zapcore.Core {
	if !r.Enabled() {
		return nil
	}

	return r.core
}

// Option tees the classifier next to the logger's core.
func (r *Reporter) Option() zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		if !r.Enabled() {
			return core
		}

		return zapcore.NewTee(core, r.core)
	})
}

// Attach returns logger with the classifier installed.
func (r *Reporter) Attach(logger *zap.Logger) *zap.Logger {
	if !r.Enabled() {
		return logger
	}

	return logger.WithOptions(r.Option())
}

// Recover reports a panic as a fatal event, flushes and panics again with the same value.
// It must be deferred directly:
//
//	defer reporter.Recover()
func (r *Reporter) Recover() {
	if !r.Enabled() {
		return
	}

	if err := recover(); err != nil {
		r.session.reportPanic(err)
		panic(err)
	}
}

// Close flushes pending events. It should be called before the process exits.
func (r *Reporter) Close() error {
	if !r.Enabled() {
		return nil
	}

	return r.session.Close()
}
