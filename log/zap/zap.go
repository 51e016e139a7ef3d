// Package zap adapts a *zap.Logger to gencache.Logger.
package zap

import (
	"maps"
	"slices"

	"github.com/unkn0wn-root/gencache"
	"go.uber.org/zap"
)

type Logger struct{ L *zap.Logger }

var _ gencache.Logger = Logger{}

// New wraps l. A nil l discards everything.
func New(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return Logger{L: l.WithOptions(zap.AddCallerSkip(1))}
}

func (z Logger) Debug(msg string, f gencache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f gencache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f gencache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f gencache.Fields) { z.L.Error(msg, fields(f)...) }

// fields are emitted in key order so log lines diff cleanly.
func fields(f gencache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for _, k := range slices.Sorted(maps.Keys(f)) {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
