package sentryzapreporter

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

const defaultFlushTimeout = 2 * time.Second

// ErrFlushTimeout is returned by Close when buffered events could not be delivered in time.
var ErrFlushTimeout = errors.New("sentry: flush timed out")

// Session owns the sentry client for the lifetime of the process.
// Closing it flushes whatever the client still buffers.
type Session struct {
	hub          *sentry.Hub
	flushTimeout time.Duration
	debugWriter  *zapio.Writer

	closeOnce sync.Once
	closeErr  error
}

func newSession(cfg Config, s *settings, release string) (*Session, error) {
	options := sentry.ClientOptions{
		Dsn:            cfg.DSN,
		Environment:    cfg.Environment,
		Release:        release,
		Debug:          cfg.Debug,
		MaxBreadcrumbs: cfg.MaxBreadcrumbs,
		EnableLogs:     s.logs,
	}

	var debugWriter *zapio.Writer
	if cfg.Debug {
		debugWriter = &zapio.Writer{Log: s.logger.Named("sentry"), Level: zapcore.DebugLevel}
		options.DebugWriter = debugWriter
	}

	for _, fn := range s.clientOptions {
		fn(&options)
	}

	client, err := sentry.NewClient(options)
	if err != nil {
		return nil, fmt.Errorf("init sentry client: %w", err)
	}

	flushTimeout := cfg.FlushTimeout
	if flushTimeout <= 0 {
		flushTimeout = defaultFlushTimeout
	}

	return &Session{
		hub:          sentry.NewHub(client, sentry.NewScope()),
		flushTimeout: flushTimeout,
		debugWriter:  debugWriter,
	}, nil
}

// Hub returns the hub every report of the session goes through.
func (s *Session) Hub() *sentry.Hub {
	return s.hub
}

func (s *Session) setTag(key, value string) {
	s.hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag(key, value)
	})
}

func (s *Session) flush() bool {
	return s.hub.Flush(s.flushTimeout)
}

func (s *Session) reportPanic(value interface{}) {
	s.hub.Recover(value)
	s.flush()
}

// Close flushes the client and shuts its transport down.
// Subsequent calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if !s.flush() {
			s.closeErr = ErrFlushTimeout
		}

		s.hub.Client().Close()

		// sentry debug output is process wide and may still arrive after Close.
		if s.debugWriter != nil {
			_ = s.debugWriter.Sync()
		}
	})

	return s.closeErr
}
