package gormlog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"

	"github.com/fatflowers/licensing/pkg/logctx"
)

const defaultSlowThreshold = 500 * time.Millisecond

// Options tunes which statements reach the log.
type Options struct {
	// Level is one of silent, error, warn, info. Empty means warn.
	Level         string
	SlowThreshold time.Duration
}

// Logger routes gorm output through the request scoped zap logger, so SQL
// lines carry the same trace_id and lkey as the handler that issued them.
type Logger struct {
	base  *zap.SugaredLogger
	level gormlogger.LogLevel
	slow  time.Duration
}

func New(base *zap.SugaredLogger, opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	slow := opts.SlowThreshold
	if slow == 0 {
		slow = defaultSlowThreshold
	}
	return &Logger{base: base, level: level, slow: slow}, nil
}

func ParseLevel(s string) (gormlogger.LogLevel, error) {
	switch strings.ToLower(s) {
	case "silent":
		return gormlogger.Silent, nil
	case "error":
		return gormlogger.Error, nil
	case "", "warn":
		return gormlogger.Warn, nil
	case "info":
		return gormlogger.Info, nil
	}
	return 0, fmt.Errorf("unknown gorm log level %q", s)
}

func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *Logger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		logctx.FromCtx(ctx, l.base).Infof(msg, data...)
	}
}

func (l *Logger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		logctx.FromCtx(ctx, l.base).Warnf(msg, data...)
	}
}

func (l *Logger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		logctx.FromCtx(ctx, l.base).Errorf(msg, data...)
	}
}

// Trace logs failed statements at error, slow ones at warn and the rest at
// info. Missing rows are not failures.
func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	took := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.slow > 0 && took > l.slow
	switch {
	case failed && l.level >= gormlogger.Error:
	case slow && l.level >= gormlogger.Warn:
	case l.level >= gormlogger.Info:
	default:
		return
	}

	query, rows := fc()
	lg := logctx.FromCtx(ctx, l.base).With(
		"sql", query,
		"rows", rows,
		"took_ms", took.Milliseconds(),
		"source", trimSource(utils.FileWithLineNum()),
	)
	switch {
	case failed:
		lg.Errorw("sql_failed", "err", err)
	case slow:
		lg.Warnw("sql_slow", "threshold_ms", l.slow.Milliseconds())
	default:
		lg.Infow("sql")
	}
}

// trimSource keeps the module relative part of a file:line reference.
func trimSource(s string) string {
	s = strings.ReplaceAll(s, `\`, "/")
	for _, root := range []string{"/internal/", "/pkg/", "/cmd/"} {
		if i := strings.LastIndex(s, root); i >= 0 {
			return s[i+1:]
		}
	}
	dir, file := path.Split(s)
	return path.Join(path.Base(dir), file)
}
