// Package logrus adapts logrus to gencache.Logger.
package logrus

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/gencache"
)

type Logger struct{ L logrus.FieldLogger }

var _ gencache.Logger = Logger{}

// New wraps l (a *logrus.Logger or *logrus.Entry). A nil l discards everything.
func New(l logrus.FieldLogger) Logger {
	if l == nil {
		d := logrus.New()
		d.SetOutput(io.Discard)
		l = d
	}
	return Logger{L: l}
}

func (l Logger) Debug(msg string, f gencache.Fields) { l.L.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logger) Info(msg string, f gencache.Fields)  { l.L.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f gencache.Fields)  { l.L.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f gencache.Fields) { l.L.WithFields(logrus.Fields(f)).Error(msg) }
