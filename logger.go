package gencache

import "maps"

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a tiny leveled logger. Adapters for zap, logrus and slog live
// under log/. If Logger is nil in Options, logging is disabled.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// WithFields returns a Logger that adds base to every entry. Fields passed
// per entry win over base on conflict.
func WithFields(l Logger, base Fields) Logger {
	if len(base) == 0 {
		return l
	}
	if w, ok := l.(fieldLogger); ok {
		merged := maps.Clone(w.base)
		maps.Copy(merged, base)
		return fieldLogger{l: w.l, base: merged}
	}
	return fieldLogger{l: l, base: maps.Clone(base)}
}

type fieldLogger struct {
	l    Logger
	base Fields
}

func (w fieldLogger) merge(f Fields) Fields {
	out := make(Fields, len(w.base)+len(f))
	maps.Copy(out, w.base)
	maps.Copy(out, f)
	return out
}

func (w fieldLogger) Debug(msg string, f Fields) { w.l.Debug(msg, w.merge(f)) }
func (w fieldLogger) Info(msg string, f Fields)  { w.l.Info(msg, w.merge(f)) }
func (w fieldLogger) Warn(msg string, f Fields)  { w.l.Warn(msg, w.merge(f)) }
func (w fieldLogger) Error(msg string, f Fields) { w.l.Error(msg, w.merge(f)) }
