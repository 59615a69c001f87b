package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(t *testing.T) (*CtxZapLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewFromZap(zap.New(core), "test"), logs
}

func TestManagerConfig_Defaults(t *testing.T) {
	var cfg ManagerConfig
	cfg.ApplyDefaults()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, "logs", cfg.BaseLogDir)
	assert.Equal(t, "trace_id", cfg.TraceIDFieldName)
	require.NoError(t, cfg.Validate())
}

func TestManagerConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ManagerConfig)
	}{
		{"bad level", func(c *ManagerConfig) { c.Level = "verbose" }},
		{"bad encoding", func(c *ManagerConfig) { c.Encoding = "xml" }},
		{"bad console encoding", func(c *ManagerConfig) { c.ConsoleEncoding = "pretty" }},
		{"max size too large", func(c *ManagerConfig) { c.MaxSize = 20000 }},
		{"negative max age", func(c *ManagerConfig) { c.MaxAge = -1 }},
		{"bad stacktrace level", func(c *ManagerConfig) { c.StacktraceLevel = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultManagerConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("unknown"))
}

func TestCtxZapLogger_TraceIDEnrichment(t *testing.T) {
	log, logs := newObserved(t)

	ctx := ContextWithTraceID(context.Background(), "trace-123")
	log.InfoCtx(ctx, "token issued", zap.String("cookie", "csrf_token"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "token issued", entry.Message)
	assert.Equal(t, "trace-123", fields["trace_id"])
	assert.Equal(t, "csrf_token", fields["cookie"])
	assert.Equal(t, "test", fields["module"])
}

func TestCtxZapLogger_NoTraceID(t *testing.T) {
	log, logs := newObserved(t)

	log.WarnCtx(context.Background(), "denied")

	require.Equal(t, 1, logs.Len())
	_, ok := logs.All()[0].ContextMap()["trace_id"]
	assert.False(t, ok)
}

func TestCtxZapLogger_With(t *testing.T) {
	log, logs := newObserved(t)

	log.With(zap.String("component", "csrf")).Debug("setup")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "csrf", logs.All()[0].ContextMap()["component"])
}

func TestTraceIDFromContext_Nil(t *testing.T) {
	//nolint:staticcheck // nil context is handled deliberately
	assert.Equal(t, "", TraceIDFromContext(nil))
}

func TestManager_GetLoggerCaches(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.EnableConsole = false
	m := NewManager(cfg)
	defer m.CloseAll()

	a := m.GetLogger("csrf")
	b := m.GetLogger("csrf")
	c := m.GetLogger("revocation")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "revocation", c.Module())
}

func TestManager_FileOutput(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.EnableConsole = false
	cfg.EnableFile = true
	cfg.BaseLogDir = t.TempDir()
	m := NewManager(cfg)

	m.GetLogger("csrf").Info("written to file")
	m.CloseAll()

	assert.FileExists(t, cfg.filePath("csrf", "info"))
}

func TestGinLogWriter(t *testing.T) {
	log, logs := newObserved(t)
	w := NewGinLogWriter(log)

	line := []byte("[GIN-debug] GET /csrf-token\n")
	n, err := w.Write(line)
	require.NoError(t, err)
	assert.Equal(t, len(line), n)

	_, _ = w.Write([]byte("[WARNING] running in debug mode"))
	_, _ = w.Write([]byte("   "))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.DebugLevel, logs.All()[0].Level)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
}
