package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager owns one CtxZapLogger per module.
type Manager struct {
	config  ManagerConfig
	loggers map[string]*CtxZapLogger
	bases   map[string]*zap.Logger
	writers []*lumberjack.Logger
	mu      sync.RWMutex
}

var (
	globalManager *Manager
	globalMu      sync.Mutex
)

// NewManager creates an independent manager; zero fields are defaulted.
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		config:  cfg,
		loggers: make(map[string]*CtxZapLogger),
		bases:   make(map[string]*zap.Logger),
	}
}

// InitManager installs the process-wide manager. A second call replaces the
// first after flushing it.
func InitManager(cfg ManagerConfig) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalManager != nil {
		globalManager.CloseAll()
	}
	globalManager = NewManager(cfg)
}

func global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalManager == nil {
		globalManager = NewManager(DefaultManagerConfig())
	}
	return globalManager
}

// GetLogger returns the module logger, creating it on first use.
func (m *Manager) GetLogger(module string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[module]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[module]; ok {
		return l
	}

	base := m.build(module).With(zap.String("module", module))
	l := &CtxZapLogger{
		base:   base.WithOptions(zap.AddCallerSkip(1)),
		module: module,
		config: &m.config,
	}
	m.loggers[module] = l
	m.bases[module] = base
	return l
}

func (m *Manager) build(module string) *zap.Logger {
	level := ParseLevel(m.config.Level)
	encoder := newEncoder(m.config.Encoding)
	var cores []zapcore.Core

	if m.config.EnableConsole {
		consoleEncoder := encoder
		if m.config.ConsoleEncoding != "" && m.config.ConsoleEncoding != m.config.Encoding {
			consoleEncoder = newEncoder(m.config.ConsoleEncoding)
		}
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level))
	}

	if m.config.EnableFile {
		infoWriter := m.fileWriter(m.config.filePath(module, "info"))
		cores = append(cores, zapcore.NewCore(encoder, infoWriter,
			zap.LevelEnablerFunc(func(l zapcore.Level) bool {
				return l >= level && l < zapcore.ErrorLevel
			})))

		errorWriter := m.fileWriter(m.config.filePath(module, "error"))
		cores = append(cores, zapcore.NewCore(encoder, errorWriter,
			zap.LevelEnablerFunc(func(l zapcore.Level) bool {
				return l >= zapcore.ErrorLevel
			})))
	}

	var opts []zap.Option
	if m.config.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

func (m *Manager) fileWriter(path string) zapcore.WriteSyncer {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    m.config.MaxSize,
		MaxBackups: m.config.MaxBackups,
		MaxAge:     m.config.MaxAge,
		Compress:   m.config.Compress,
		LocalTime:  true,
	}
	m.writers = append(m.writers, w)
	return zapcore.AddSync(w)
}

// CloseAll flushes buffers and closes rotated files.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.bases {
		_ = l.Sync()
	}
	for _, w := range m.writers {
		_ = w.Close()
	}
	m.loggers = make(map[string]*CtxZapLogger)
	m.bases = make(map[string]*zap.Logger)
	m.writers = nil
}

// Config returns the effective configuration.
func (m *Manager) Config() ManagerConfig {
	return m.config
}

func newEncoder(encoding string) zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if encoding == "console" {
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

// ============================================
// Package-level helpers (global manager)
// ============================================

// GetLogger returns the module logger of the global manager.
func GetLogger(module string) *CtxZapLogger {
	return global().GetLogger(module)
}

// CloseAll flushes the global manager.
func CloseAll() {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalManager != nil {
		globalManager.CloseAll()
	}
}

// Setup validates cfg and installs it globally.
func Setup(cfg ManagerConfig) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("logger setup: %w", err)
	}
	InitManager(cfg)
	return nil
}

func Debug(module, msg string, fields ...zap.Field) { GetLogger(module).Debug(msg, fields...) }
func Info(module, msg string, fields ...zap.Field)  { GetLogger(module).Info(msg, fields...) }
func Warn(module, msg string, fields ...zap.Field)  { GetLogger(module).Warn(msg, fields...) }
func Error(module, msg string, fields ...zap.Field) { GetLogger(module).Error(msg, fields...) }

func InfoCtx(ctx context.Context, module, msg string, fields ...zap.Field) {
	GetLogger(module).InfoCtx(ctx, msg, fields...)
}

func WarnCtx(ctx context.Context, module, msg string, fields ...zap.Field) {
	GetLogger(module).WarnCtx(ctx, msg, fields...)
}

func ErrorCtx(ctx context.Context, module, msg string, fields ...zap.Field) {
	GetLogger(module).ErrorCtx(ctx, msg, fields...)
}
