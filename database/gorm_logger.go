package database

import (
	"context"
	"time"

	"gorm.io/gorm/logger"
)

// metricsLogger wraps the GORM logger and feeds query failures into the error counters.
type metricsLogger struct {
	inner logger.Interface
}

func (l metricsLogger) LogMode(level logger.LogLevel) logger.Interface {
	return metricsLogger{inner: l.inner.LogMode(level)}
}

func (l metricsLogger) Info(ctx context.Context, s string, args ...interface{}) {
	l.inner.Info(ctx, s, args...)
}

func (l metricsLogger) Warn(ctx context.Context, s string, args ...interface{}) {
	l.inner.Warn(ctx, s, args...)
}

func (l metricsLogger) Error(ctx context.Context, s string, args ...interface{}) {
	l.inner.Error(ctx, s, args...)
}

func (l metricsLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err != nil {
		recordQueryError(err)
	}
	l.inner.Trace(ctx, begin, fc, err)
}
