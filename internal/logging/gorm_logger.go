package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormZapLogger routes GORM's log output through zap so database noise lands
// in the same per-level files as everything else.
type GormZapLogger struct {
	log           *zap.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
}

// NewGormZapLogger wraps the zap logger for GORM. Warn is the default level:
// routine query traces stay out of the files, slow queries and errors do not.
func NewGormZapLogger(log *zap.Logger) *GormZapLogger {
	return &GormZapLogger{
		log:           log,
		level:         logger.Warn,
		slowThreshold: 200 * time.Millisecond,
	}
}

// LogMode returns a copy at the requested level, per the logger.Interface
// contract.
func (l *GormZapLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		l.log.Sugar().Infof(msg, data...)
	}
}

func (l *GormZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Sugar().Warnf(msg, data...)
	}
}

func (l *GormZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		l.log.Sugar().Errorf(msg, data...)
	}
}

// Trace logs executed queries. ErrRecordNotFound is not an error here; the
// repositories branch on it for get-or-create flows.
func (l *GormZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.log.Error("Query failed", append(fields, zap.Error(err))...)
	case elapsed > l.slowThreshold && l.level >= logger.Warn:
		l.log.Warn("Slow query", fields...)
	case l.level >= logger.Info:
		l.log.Debug("Query", fields...)
	}
}
