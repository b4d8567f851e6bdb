package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used throughout the emulator.
// *logrus.Logger and *logrus.Entry both satisfy it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// New returns a Logger writing plain text to stderr at the
// info level.
func New() *logrus.Logger {
	return NewWithWriter(os.Stderr, logrus.InfoLevel)
}

// NewWithWriter returns a Logger writing plain text lines to w,
// discarding anything below level.
func NewWithWriter(w io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return l
}

// ParseLevel converts a level name (debug, info, warn, error) into
// a logrus.Level.
func ParseLevel(name string) (logrus.Level, error) {
	return logrus.ParseLevel(name)
}

// WithComponent tags every line written through l with the
// component that wrote it, when l is backed by logrus.
func WithComponent(l Logger, component string) Logger {
	switch t := l.(type) {
	case *logrus.Logger:
		return t.WithField("component", component)
	case *logrus.Entry:
		return t.WithField("component", component)
	}
	return l
}
