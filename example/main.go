package main

import (
	"errors"

	sentryzapreporter "github.com/adlandh/sentry-zapreporter"
	"go.uber.org/zap"
)

func main() {
	diagnostics, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// reporting is disabled unless SENTRY_DSN is set
	reporter, err := sentryzapreporter.NewReporter(false,
		sentryzapreporter.WithStackTrace(),
		sentryzapreporter.WithLogger(diagnostics),
	)
	if err != nil {
		panic(err)
	}

	defer func() {
		_ = reporter.Close()
	}()

	defer reporter.Recover()

	logger, err := zap.NewDevelopment(reporter.Option())
	if err != nil {
		panic(err)
	}

	logger.Debug("debug message") // breadcrumb
	logger.Info("info message")   // breadcrumb
	logger.Warn("warn message")   // breadcrumb
	logger.Error("error message with fake error", zap.String("just a test string", "something"),
		zap.Error(errors.New("fake error"))) // will be sent to sentry with the breadcrumbs above
	logger.Panic("panic message") // will be sent to sentry by Recover
}
