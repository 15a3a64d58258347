// pattern: Imperative Shell

package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NopLogger returns a logger that discards all output.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

// TestLogManager routes every entry, at debug level, to a channel only.
type TestLogManager struct {
	*scopeCache
	sink *ChannelSink
}

// NewTestLogManager creates a LoggerProvider for tests.
func NewTestLogManager(bufSize int) *TestLogManager {
	sink := NewChannelSink(bufSize)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), sink, zapcore.DebugLevel)
	return &TestLogManager{
		scopeCache: newScopeCache(zap.New(core)),
		sink:       sink,
	}
}

// Channel returns the logged entries.
func (m *TestLogManager) Channel() <-chan LogEntry {
	return m.sink.Entries()
}

// Close closes the entry channel.
func (m *TestLogManager) Close() error {
	return m.sink.Close()
}
