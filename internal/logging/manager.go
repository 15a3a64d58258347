// pattern: Imperative Shell

package logging

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	timeKey  = "ts"
	levelKey = "level"
	nameKey  = "logger"
	msgKey   = "msg"
)

// Config holds configuration for the Manager.
type Config struct {
	FilePath   string    // rotating JSON log file
	MaxSizeMB  int       // size before rotation
	MaxBackups int       // rotated files kept
	MaxAgeDays int       // days rotated files are kept
	Level      string    // debug, info, warn, error
	BufSize    int       // entries buffered for the TUI (default 256)
	Console    io.Writer // optional human-readable output, e.g. os.Stderr
}

// LoggerProvider hands out scoped loggers. Manager and TestLogManager
// implement it.
type LoggerProvider interface {
	For(scope string) *ScopedLogger
}

// ScopedLogger logs with alternating key/value pairs. A nil or zero
// ScopedLogger discards everything.
type ScopedLogger struct {
	sugar *zap.SugaredLogger
	scope string
}

func (l *ScopedLogger) Debug(msg string, kv ...any) {
	if l != nil && l.sugar != nil {
		l.sugar.Debugw(msg, kv...)
	}
}

func (l *ScopedLogger) Info(msg string, kv ...any) {
	if l != nil && l.sugar != nil {
		l.sugar.Infow(msg, kv...)
	}
}

func (l *ScopedLogger) Warn(msg string, kv ...any) {
	if l != nil && l.sugar != nil {
		l.sugar.Warnw(msg, kv...)
	}
}

func (l *ScopedLogger) Error(msg string, kv ...any) {
	if l != nil && l.sugar != nil {
		l.sugar.Errorw(msg, kv...)
	}
}

// With returns a logger that adds kv to every entry.
func (l *ScopedLogger) With(kv ...any) *ScopedLogger {
	if l == nil || l.sugar == nil {
		return l
	}
	return &ScopedLogger{sugar: l.sugar.With(kv...), scope: l.scope}
}

// Scope returns the logger name.
func (l *ScopedLogger) Scope() string {
	if l == nil {
		return ""
	}
	return l.scope
}

// scopeCache hands out one ScopedLogger per scope name.
type scopeCache struct {
	mu      sync.Mutex
	base    *zap.Logger
	loggers map[string]*ScopedLogger
}

func newScopeCache(base *zap.Logger) *scopeCache {
	return &scopeCache{base: base, loggers: make(map[string]*ScopedLogger)}
}

func (c *scopeCache) For(scope string) *ScopedLogger {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.loggers[scope]; ok {
		return l
	}
	l := &ScopedLogger{sugar: c.base.Named(scope).Sugar(), scope: scope}
	c.loggers[scope] = l
	return l
}

// Manager writes every entry to a rotating file and to a channel sink read by
// the TUI, and optionally to a console writer.
type Manager struct {
	*scopeCache
	sink *ChannelSink
	file *lumberjack.Logger
}

// NewManager builds the zap cores described by cfg.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("logging: FilePath is required")
	}
	if cfg.BufSize <= 0 {
		cfg.BufSize = 256
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 5
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 14
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, err
	}

	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	sink := NewChannelSink(cfg.BufSize)

	json := zapcore.NewJSONEncoder(encoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(json, zapcore.AddSync(file), level),
		zapcore.NewCore(json.Clone(), sink, level),
	}
	if cfg.Console != nil {
		consoleCfg := encoderConfig()
		consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.AddSync(cfg.Console),
			max(level, zapcore.WarnLevel),
		))
	}

	return &Manager{
		scopeCache: newScopeCache(zap.New(zapcore.NewTee(cores...))),
		sink:       sink,
		file:       file,
	}, nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = timeKey
	cfg.LevelKey = levelKey
	cfg.NameKey = nameKey
	cfg.MessageKey = msgKey
	cfg.EncodeTime = zapcore.EpochTimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}

// Entries returns decoded entries for display.
func (m *Manager) Entries() <-chan LogEntry {
	return m.sink.Entries()
}

// Sync flushes buffered output.
func (m *Manager) Sync() error {
	return m.base.Sync()
}

// Close flushes and releases the log file and the entry channel.
func (m *Manager) Close() error {
	_ = m.Sync()
	_ = m.sink.Close()
	return m.file.Close()
}
