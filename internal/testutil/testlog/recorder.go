// Package testlog records log entries so tests can assert on them.
package testlog

import (
	"sync"

	"rental-quote-service/internal/logx"
)

type Entry struct {
	Level  string
	Msg    string
	Fields []logx.Field
}

// Field returns the value of the named field, if present.
func (e Entry) Field(key string) (any, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func New() *Recorder { return &Recorder{} }

func (r *Recorder) Logger() logx.Logger { return recLogger{r: r} }

// Entries returns a snapshot of everything logged so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Count returns how many entries were logged at level with msg.
func (r *Recorder) Count(level, msg string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level && e.Msg == msg {
			n++
		}
	}
	return n
}

func (r *Recorder) add(level, msg string, fields []logx.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Fields: append([]logx.Field(nil), fields...)})
}

type recLogger struct {
	r    *Recorder
	base []logx.Field
}

func (l recLogger) Debug(msg string, f ...logx.Field) { l.r.add("debug", msg, l.merge(f)) }
func (l recLogger) Info(msg string, f ...logx.Field)  { l.r.add("info", msg, l.merge(f)) }
func (l recLogger) Warn(msg string, f ...logx.Field)  { l.r.add("warn", msg, l.merge(f)) }
func (l recLogger) Error(msg string, f ...logx.Field) { l.r.add("error", msg, l.merge(f)) }

func (l recLogger) With(f ...logx.Field) logx.Logger {
	return recLogger{r: l.r, base: l.merge(f)}
}

func (l recLogger) Sync() error { return nil }

func (l recLogger) merge(f []logx.Field) []logx.Field {
	out := make([]logx.Field, 0, len(l.base)+len(f))
	out = append(out, l.base...)
	return append(out, f...)
}

var _ logx.Logger = recLogger{}
