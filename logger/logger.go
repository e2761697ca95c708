// package logger is a package that provides a structured logger that's
// context.Context aware.
package logger

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Logger represents a structured leveled logger.
type Logger interface {
	Debug(ctx context.Context, msg string, pairs ...interface{})
	Info(ctx context.Context, msg string, pairs ...interface{})
	Warn(ctx context.Context, msg string, pairs ...interface{})
	Error(ctx context.Context, msg string, pairs ...interface{})
	Crit(ctx context.Context, msg string, pairs ...interface{})
}

// logger is an implementation of the Logger interface backed by logrus.
type logger struct {
	*logrus.Logger
}

// New wraps the logrus.Logger to implement the Logger interface.
func New(l *logrus.Logger) Logger {
	return &logger{
		Logger: l,
	}
}

// NewFromLevel returns a Logger writing JSON to stderr at the named level, e.g.
// "info". An unknown level falls back to info.
func NewFromLevel(level string) Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return New(l)
}

func (l *logger) Debug(ctx context.Context, msg string, pairs ...interface{}) {
	l.WithFields(fields(pairs)).Debug(msg)
}
func (l *logger) Info(ctx context.Context, msg string, pairs ...interface{}) {
	l.WithFields(fields(pairs)).Info(msg)
}
func (l *logger) Warn(ctx context.Context, msg string, pairs ...interface{}) {
	l.WithFields(fields(pairs)).Warn(msg)
}
func (l *logger) Error(ctx context.Context, msg string, pairs ...interface{}) {
	l.WithFields(fields(pairs)).Error(msg)
}

// Crit logs at error level with crit=true. logrus' fatal and panic levels
// would exit or unwind, which a library must not do.
func (l *logger) Crit(ctx context.Context, msg string, pairs ...interface{}) {
	l.WithFields(fields(pairs)).WithField("crit", true).Error(msg)
}

// fields treats consecutive arguments as key value pairs. Given an uneven
// number of pairs, as in:
//
//	["key", "value", "message"]
//
// the dangling value is logged under the "extra" key.
func fields(pairs []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(pairs)/2+1)
	for i := 0; i < len(pairs); i += 2 {
		if len(pairs) == i+1 {
			f["extra"] = pairs[i]
			break
		}
		v := pairs[i+1]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		f[fmt.Sprintf("%v", pairs[i])] = v
	}
	return f
}

// WithLogger inserts a Logger into the provided context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns a Logger from the context.
func FromContext(ctx context.Context) (Logger, bool) {
	l, ok := ctx.Value(loggerKey).(Logger)
	return l, ok
}

func Info(ctx context.Context, msg string, pairs ...interface{}) {
	withLogger(ctx, func(l Logger) {
		l.Info(ctx, msg, pairs...)
	})
}

func Debug(ctx context.Context, msg string, pairs ...interface{}) {
	withLogger(ctx, func(l Logger) {
		l.Debug(ctx, msg, pairs...)
	})
}

func Warn(ctx context.Context, msg string, pairs ...interface{}) {
	withLogger(ctx, func(l Logger) {
		l.Warn(ctx, msg, pairs...)
	})
}

func Error(ctx context.Context, msg string, pairs ...interface{}) {
	withLogger(ctx, func(l Logger) {
		l.Error(ctx, msg, pairs...)
	})
}

func Crit(ctx context.Context, msg string, pairs ...interface{}) {
	withLogger(ctx, func(l Logger) {
		l.Crit(ctx, msg, pairs...)
	})
}

// withLogger calls fn with the context's Logger. Without one, nothing is
// logged.
func withLogger(ctx context.Context, fn func(l Logger)) {
	if ctx == nil {
		return
	}
	if l, ok := FromContext(ctx); ok {
		fn(l)
	}
}

type key int

const (
	loggerKey key = iota
)
