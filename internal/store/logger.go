package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLogger routes gorm's query log into zerolog. SQL text is only rendered
// at trace level.
type gormLogger struct {
	log zerolog.Logger
}

func newGormLogger(log zerolog.Logger) gormlogger.Interface {
	return gormLogger{log: log.With().Str("component", "gorm").Logger()}
}

func (l gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	switch level {
	case gormlogger.Silent:
		l.log = l.log.Level(zerolog.Disabled)
	case gormlogger.Error:
		l.log = l.log.Level(zerolog.ErrorLevel)
	case gormlogger.Warn:
		l.log = l.log.Level(zerolog.WarnLevel)
	case gormlogger.Info:
		l.log = l.log.Level(zerolog.TraceLevel)
	}
	return l
}

func (l gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	l.log.Info().Msgf(msg, data...)
}

func (l gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	l.log.Warn().Msgf(msg, data...)
}

func (l gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	l.log.Error().Msgf(msg, data...)
}

func (l gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error().Err(err).Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("query failed")
	case elapsed > slowQueryThreshold:
		sql, rows := fc()
		l.log.Warn().Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("slow query")
	default:
		if evt := l.log.Trace(); evt.Enabled() {
			sql, rows := fc()
			evt.Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("query")
		}
	}
}
