package api

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const ctxKeyLogger ctxKey = "logger"

func WithLogger(ctx context.Context, l logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, l)
}

// LoggerFromContext returns the request-scoped logger, or the standard logrus
// logger when none was attached.
func LoggerFromContext(ctx context.Context) logrus.FieldLogger {
	if l, ok := ctx.Value(ctxKeyLogger).(logrus.FieldLogger); ok && l != nil {
		return l
	}
	return logrus.StandardLogger()
}
