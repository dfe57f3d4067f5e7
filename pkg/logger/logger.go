package logger

import (
	"context"
	"os"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conwetlab/privatedatasets-backend/config"
)

var once sync.Once
var core zapcore.Core

// GetZapLogger returns an instance of zap logger
func GetZapLogger(ctx context.Context) (*zap.Logger, error) {
	var err error
	once.Do(func() {
		// info and above to stdout, warn and above duplicated to stderr
		stdoutSyncer := zapcore.Lock(os.Stdout)
		stderrSyncer := zapcore.Lock(os.Stderr)

		warnErrorFatalLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
			return level >= zapcore.WarnLevel
		})

		if config.Config.Server.Debug {
			debugInfoLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level == zapcore.DebugLevel || level == zapcore.InfoLevel
			})
			core = zapcore.NewTee(
				zapcore.NewCore(
					zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()),
					stdoutSyncer,
					debugInfoLevel,
				),
				zapcore.NewCore(
					zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()),
					stderrSyncer,
					warnErrorFatalLevel,
				),
			)
		} else {
			infoLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level == zapcore.InfoLevel
			})
			core = zapcore.NewTee(
				zapcore.NewCore(
					zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
					stdoutSyncer,
					infoLevel,
				),
				zapcore.NewCore(
					zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
					stderrSyncer,
					warnErrorFatalLevel,
				),
			)
		}
	})

	// construct the logger with the tee core and inject log entries into
	// the active trace span, if any
	logger := zap.New(core).WithOptions(
		zap.Hooks(func(entry zapcore.Entry) error {
			span := trace.SpanFromContext(ctx)
			if !span.IsRecording() {
				return nil
			}

			span.AddEvent("log", trace.WithAttributes(
				attribute.String("log.severity", entry.Level.String()),
				attribute.String("log.message", entry.Message),
			))
			if entry.Level >= zap.ErrorLevel {
				span.SetStatus(codes.Error, entry.Message)
			}

			return nil
		}))

	return logger, err
}
