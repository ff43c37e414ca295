package sentryzapreporter

import (
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option configures a Reporter.
type Option func(*settings)

type settings struct {
	config        *Config
	level         zapcore.LevelEnabler
	stackTrace    bool
	logs          bool
	logsLevel     zapcore.Level
	logger        *zap.Logger
	executable    *string
	release       string
	clientOptions []func(*sentry.ClientOptions)
}

func newSettings(options []Option) *settings {
	s := &settings{
		level:  zapcore.DebugLevel,
		logger: zap.NewNop(),
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// WithConfig uses cfg instead of reading the environment.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.config = &cfg
	}
}

// WithStackTrace attaches the current stack and the first error field to incidents
func WithStackTrace() Option {
	return func(s *settings) {
		s.stackTrace = true
	}
}

// WithMinLevel set minimum log level for entries handled by the reporter.
// Entries below it are neither reported nor kept as breadcrumbs.
func WithMinLevel(level zapcore.Level) Option {
	return func(s *settings) {
		s.level = level
	}
}

// WithLogs additionally forwards entries at or above level to Sentry structured logs.
func WithLogs(level zapcore.Level) Option {
	return func(s *settings) {
		s.logs = true
		s.logsLevel = level
	}
}

// WithLogger sets the logger used for the reporter's own diagnostics.
// It must not be a logger the reporter is attached to.
// With SENTRY_DEBUG set, sentry's debug output is written to it as well, also after Close.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExecutable overrides the executable tag. An empty name disables the tag.
func WithExecutable(name string) Option {
	return func(s *settings) {
		s.executable = &name
	}
}

// WithRelease sets the release to name@version.
func WithRelease(name, version string) Option {
	return func(s *settings) {
		s.release = releaseName(name, version)
	}
}

// WithClientOptions lets callers adjust the sentry client options before the client is created.
func WithClientOptions(fn func(*sentry.ClientOptions)) Option {
	return func(s *settings) {
		if fn != nil {
			s.clientOptions = append(s.clientOptions, fn)
		}
	}
}
