package logger

import (
	"context"

	"github.com/hyperdxio/opentelemetry-go/otelzap"
	sdk "github.com/hyperdxio/opentelemetry-logs-go/sdk/logs"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type LoggerConnectProps struct {
	Production     bool
	LoggerProvider *sdk.LoggerProvider
}

type LogMiddleware struct {
	logger *zap.Logger
}

func Connect(args LoggerConnectProps) *LogMiddleware {
	var logger *zap.Logger

	if args.Production && args.LoggerProvider != nil {
		logger = zap.New(otelzap.NewOtelCore(args.LoggerProvider))
		zap.ReplaceGlobals(logger)
		logger.Info("[Logger] Starting Logger with Prod Config")
	} else {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			logger = zap.NewNop()
		}
	}

	return &LogMiddleware{logger: logger}
}

// Wrap adapts an existing zap logger, e.g. an observer core in tests.
func Wrap(logger *zap.Logger) *LogMiddleware {
	return &LogMiddleware{logger: logger}
}

func Nop() *LogMiddleware {
	return &LogMiddleware{logger: zap.NewNop()}
}

func (l *LogMiddleware) Logger(ctx context.Context) *zap.Logger {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return l.logger
	}

	return l.logger.With(
		zap.String("trace_id", spanContext.TraceID().String()),
		zap.String("span_id", spanContext.SpanID().String()),
	)
}

func (l *LogMiddleware) Sync() error {
	return l.logger.Sync()
}
