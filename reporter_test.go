package sentryzapreporter

import (
	"os"
	"testing"

	"github.com/brianvoe/gofakeit"
	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type reporterTest struct {
	suite.Suite
	transport *transportMock
}

func (s *reporterTest) SetupTest() {
	s.transport = &transportMock{}
}

func (s *reporterTest) withTransport() Option {
	return WithClientOptions(func(o *sentry.ClientOptions) {
		o.Transport = s.transport
	})
}

func (s *reporterTest) TestWithoutDSN() {
	s.Run("empty", func() {
		s.T().Setenv("SENTRY_DSN", "")
		s.assertDisabled()
	})

	s.Run("unset", func() {
		s.T().Setenv("SENTRY_DSN", "")
		s.Require().NoError(os.Unsetenv("SENTRY_DSN"))
		s.assertDisabled()
	})
}

func (s *reporterTest) assertDisabled() {
	installers := map[string]func(...Option) (*Reporter, error){
		"panic reporter": PanicReporter,
		"error reporter": ErrorReporter,
		"reporter": func(options ...Option) (*Reporter, error) {
			return NewReporter(false, options...)
		},
	}

	for name, install := range installers {
		s.Run(name, func() {
			reporter, err := install(s.withTransport())
			s.Require().NoError(err)
			s.Require().False(reporter.Enabled())
			s.Require().Nil(reporter.Session())
			s.Require().Nil(reporter.Hub())
			s.Require().Nil(reporter.Core())

			logger := zaptest.NewLogger(s.T())
			s.Require().Same(logger, reporter.Attach(logger))

			logger.WithOptions(reporter.Option()).Error(gofakeit.Sentence(10))
			s.Require().NoError(reporter.Close())
			s.Require().Empty(s.transport.Events())
		})
	}
}

func (s *reporterTest) TestWithDSNFromEnv() {
	s.T().Setenv("SENTRY_DSN", testDSN)
	s.T().Setenv("SENTRY_ENVIRONMENT", "staging")

	reporter, err := ErrorReporter(s.withTransport())
	s.Require().NoError(err)
	s.Require().True(reporter.Enabled())

	logger := reporter.Attach(zaptest.NewLogger(s.T()))
	logger.Error("disk full")

	events := s.transport.EventsWithMessage("disk full")
	s.Require().Len(events, 1)
	s.Require().Equal(sentry.LevelError, events[0].Level)
	s.Require().Equal("staging", events[0].Environment)
	s.Require().Equal(fileStem(os.Args[0]), events[0].Tags[executableTag])
}

func (s *reporterTest) TestPanicReporterFromEnv() {
	s.T().Setenv("SENTRY_DSN", testDSN)

	reporter, err := PanicReporter(s.withTransport())
	s.Require().NoError(err)

	logger := reporter.Attach(zaptest.NewLogger(s.T()))
	logger.Error("disk full")

	s.Require().Empty(s.transport.Events())
}

func (s *reporterTest) TestInvalidDSN() {
	_, err := ErrorReporter(WithConfig(Config{DSN: "not a dsn"}))
	s.Require().Error(err)
}

func (s *reporterTest) TestRelease() {
	s.Run("explicit release wins", func() {
		s.SetupTest()
		reporter, err := NewReporter(false,
			WithConfig(Config{DSN: testDSN, Release: "from-env@1"}),
			WithRelease("game", "1.2.3"),
			s.withTransport(),
		)
		s.Require().NoError(err)

		reporter.Attach(zap.NewNop()).Error("disk full")

		events := s.transport.EventsWithMessage("disk full")
		s.Require().Len(events, 1)
		s.Require().Equal("game@1.2.3", events[0].Release)
	})

	s.Run("configured release", func() {
		s.SetupTest()
		reporter, err := NewReporter(false, WithConfig(Config{DSN: testDSN, Release: "from-env@1"}), s.withTransport())
		s.Require().NoError(err)

		reporter.Attach(zap.NewNop()).Error("disk full")

		events := s.transport.EventsWithMessage("disk full")
		s.Require().Len(events, 1)
		s.Require().Equal("from-env@1", events[0].Release)
	})
}

func (s *reporterTest) TestExecutableTagDisabled() {
	reporter, err := ErrorReporter(WithConfig(Config{DSN: testDSN}), WithExecutable(""), s.withTransport())
	s.Require().NoError(err)

	reporter.Attach(zap.NewNop()).Error("disk full")

	events := s.transport.EventsWithMessage("disk full")
	s.Require().Len(events, 1)
	s.Require().NotContains(events[0].Tags, executableTag)
}

func (s *reporterTest) TestRecover() {
	reporter, err := PanicReporter(WithConfig(Config{DSN: testDSN}), WithExecutable("game"), s.withTransport())
	s.Require().NoError(err)

	reporter.Attach(zap.NewNop()).Info("loading level")

	s.Require().PanicsWithValue("boom", func() {
		defer reporter.Recover()
		panic("boom")
	})

	events := s.transport.EventsWithMessage("boom")
	s.Require().Len(events, 1)
	s.Require().Equal(sentry.LevelFatal, events[0].Level)
	s.Require().Equal("game", events[0].Tags[executableTag])
	s.Require().Len(events[0].Breadcrumbs, 1)
	s.Require().Equal("loading level", events[0].Breadcrumbs[0].Message)
}

func (s *reporterTest) TestClose() {
	core, observed := observer.New(zapcore.DebugLevel)

	reporter, err := ErrorReporter(
		WithConfig(Config{DSN: testDSN, Debug: true}),
		WithLogger(zap.New(core)),
		s.withTransport(),
	)
	s.Require().NoError(err)

	s.Require().NoError(reporter.Close())
	s.Require().NoError(reporter.Close())
	s.Require().Equal(1, s.transport.Closed())

	s.Require().NotZero(observed.FilterLevelExact(zapcore.DebugLevel).Len())
}

func (s *reporterTest) TestCloseFlushTimeout() {
	s.transport.failFlush = true

	reporter, err := ErrorReporter(WithConfig(Config{DSN: testDSN}), s.withTransport())
	s.Require().NoError(err)

	reporter.Attach(zap.NewNop()).Error("disk full")

	err = reporter.Close()
	s.Require().ErrorIs(err, ErrFlushTimeout)
	s.Require().ErrorIs(reporter.Close(), ErrFlushTimeout)
	s.Require().Equal(1, s.transport.Closed())
}

func TestReporter(t *testing.T) {
	suite.Run(t, new(reporterTest))
}

func TestNilReporter(t *testing.T) {
	var reporter *Reporter

	logger := zap.NewNop()

	require.False(t, reporter.Enabled())
	require.Nil(t, reporter.Core())
	require.Nil(t, reporter.Hub())
	require.Same(t, logger, reporter.Attach(logger))
	require.NoError(t, reporter.Close())
	require.NotPanics(t, func() {
		defer reporter.Recover()
	})
}
