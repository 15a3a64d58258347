// pattern: Imperative Shell

package logging

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

var errSinkClosed = errors.New("logging: sink closed")

// ChannelSink is a zapcore.WriteSyncer that decodes JSON log lines into
// LogEntry values for the TUI. When the buffer is full the oldest entry is
// discarded so logging never blocks.
type ChannelSink struct {
	mu      sync.Mutex
	entries chan LogEntry
	closed  bool
}

// NewChannelSink creates a sink buffering up to size entries.
func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{entries: make(chan LogEntry, size)}
}

// Write decodes one JSON line. Lines that do not decode are accepted and dropped.
func (s *ChannelSink) Write(p []byte) (int, error) {
	entry, ok := DecodeEntry(p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errSinkClosed
	}
	if !ok {
		return len(p), nil
	}

	for {
		select {
		case s.entries <- entry:
			return len(p), nil
		default:
		}
		select {
		case <-s.entries:
		default:
		}
	}
}

// Sync is a no-op.
func (s *ChannelSink) Sync() error { return nil }

// Close closes the entries channel. It is safe to call more than once.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	return nil
}

// Entries returns the channel of decoded entries.
func (s *ChannelSink) Entries() <-chan LogEntry {
	return s.entries
}

// DecodeEntry parses one JSON log line as written by the file and sink cores.
func DecodeEntry(p []byte) (LogEntry, bool) {
	var raw map[string]any
	if err := json.Unmarshal(p, &raw); err != nil {
		return LogEntry{}, false
	}

	e := LogEntry{Time: time.Now(), Level: "INFO", Scope: "app", Fields: map[string]any{}}
	if v, ok := raw[msgKey].(string); ok {
		e.Message = v
	}
	if v, ok := raw[levelKey].(string); ok {
		e.Level = ParseLevel(v)
	}
	if v, ok := raw[nameKey].(string); ok && v != "" {
		e.Scope = v
	}
	if v, ok := raw[timeKey].(float64); ok {
		sec := int64(v)
		e.Time = time.Unix(sec, int64((v-float64(sec))*1e9))
	}
	for k, v := range raw {
		switch k {
		case msgKey, levelKey, nameKey, timeKey, "caller", "stacktrace":
		default:
			e.Fields[k] = v
		}
	}
	return e, true
}
