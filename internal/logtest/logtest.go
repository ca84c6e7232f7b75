// Package logtest records slog output so tests can assert on diagnostics.
package logtest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Record is one captured log line.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// Recorder collects records from every logger derived from New.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// New returns a logger that writes into a fresh Recorder.
func New() (*slog.Logger, *Recorder) {
	rec := &Recorder{}

	return slog.New(&handler{rec: rec}), rec
}

// Records returns a copy of everything captured so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, len(r.records))
	copy(out, r.records)

	return out
}

// Len returns the number of captured records.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.records)
}

// CountAttr returns how many records carry key=value.
func (r *Recorder) CountAttr(key, value string) int {
	count := 0

	for _, rec := range r.Records() {
		if rec.Attrs[key] == value {
			count++
		}
	}

	return count
}

// CountLevel returns how many records were logged at level.
func (r *Recorder) CountLevel(level slog.Level) int {
	count := 0

	for _, rec := range r.Records() {
		if rec.Level == level {
			count++
		}
	}

	return count
}

func (r *Recorder) add(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, rec)
}

type handler struct {
	rec   *Recorder
	attrs []slog.Attr
}

func (h *handler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *handler) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]string, len(h.attrs)+record.NumAttrs())

	for _, a := range h.attrs {
		attrs[a.Key] = fmt.Sprint(a.Value.Any())
	}

	record.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = fmt.Sprint(a.Value.Any())

		return true
	})

	h.rec.add(Record{Level: record.Level, Message: record.Message, Attrs: attrs})

	return nil
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)

	return &handler{rec: h.rec, attrs: merged}
}

func (h *handler) WithGroup(string) slog.Handler {
	return h
}
