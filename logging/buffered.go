package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Entry is one captured log record with its attributes flattened to
// strings. Group names prefix attribute keys with a dot.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// BufferedLogHandler keeps log records in memory so tests can assert on
// the warnings a render produced.
type BufferedLogHandler struct {
	level slog.Leveler
	store *entryStore
	attrs []slog.Attr
	group string
}

type entryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewBufferedLogHandler returns an empty handler. A nil opts or nil level
// captures every level.
func NewBufferedLogHandler(opts *slog.HandlerOptions) *BufferedLogHandler {
	h := &BufferedLogHandler{store: &entryStore{}}
	if opts != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled implements slog.Handler.
func (h *BufferedLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.level == nil || level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *BufferedLogHandler) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Level: r.Level, Message: r.Message, Attrs: make(map[string]string)}
	for _, a := range h.attrs {
		flatten(e.Attrs, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		flatten(e.Attrs, h.group, a)
		return true
	})

	h.store.mu.Lock()
	h.store.entries = append(h.store.entries, e)
	h.store.mu.Unlock()
	return nil
}

func flatten(dst map[string]string, prefix string, a slog.Attr) {
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, ga := range v.Group() {
			flatten(dst, key, ga)
		}
		return
	}
	dst[key] = v.String()
}

// WithAttrs implements slog.Handler.
func (h *BufferedLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

// WithGroup implements slog.Handler.
func (h *BufferedLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if next.group != "" {
		name = next.group + "." + name
	}
	next.group = name
	return &next
}

// Entries returns a copy of the captured records in arrival order.
func (h *BufferedLogHandler) Entries() []Entry {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	out := make([]Entry, len(h.store.entries))
	copy(out, h.store.entries)
	return out
}

// Contains reports whether any captured message or attribute value
// contains s.
func (h *BufferedLogHandler) Contains(s string) bool {
	for _, e := range h.Entries() {
		if strings.Contains(e.Message, s) {
			return true
		}
		for _, v := range e.Attrs {
			if strings.Contains(v, s) {
				return true
			}
		}
	}
	return false
}

// Reset drops all captured records.
func (h *BufferedLogHandler) Reset() {
	h.store.mu.Lock()
	h.store.entries = nil
	h.store.mu.Unlock()
}
