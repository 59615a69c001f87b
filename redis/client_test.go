package redis

import (
	"context"
	"testing"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Addr: "10.0.0.1:6379"}
	cfg.ApplyDefaults()

	assert.Equal(t, "standalone", cfg.Mode)
	assert.Equal(t, []string{"10.0.0.1:6379"}, cfg.Addrs)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "sentinel" }},
		{"no addrs", func(c *Config) { c.Addrs = nil }},
		{"db out of range", func(c *Config) { c.DB = 16 }},
		{"negative pool", func(c *Config) { c.PoolSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := NewClient(ctx, Config{Addr: mr.Addr()}, nil, logger.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), Config{
		Addr:        addr,
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	}, nil, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Mode: "sentinel"}, nil, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestMetricsHook(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics := NewMetrics(MetricsConfig{Enabled: true})
	require.NoError(t, metrics.RegisterMetrics(mp.Meter("redis")))
	assert.Equal(t, "redis", metrics.MetricsName())
	assert.True(t, metrics.IsMetricsEnabled())

	client, err := NewClient(ctx, Config{Addr: mr.Addr()}, metrics, logger.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	// a miss is not an error
	assert.ErrorIs(t, client.Get(ctx, "missing").Err(), goredis.Nil)
	pipe := client.Pipeline()
	pipe.Set(ctx, "a", "1", 0)
	pipe.Incr(ctx, "a")
	_, err = pipe.Exec(ctx)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	byCommand := map[string]int64{}
	var errorsTotal int64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			data, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range data.DataPoints {
				switch md.Name {
				case "redis_commands_total":
					v, _ := dp.Attributes.Value("command")
					byCommand[v.AsString()] += dp.Value
				case "redis_errors_total":
					errorsTotal += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), byCommand["get"])
	assert.Equal(t, int64(1), byCommand["set"])
	assert.Equal(t, int64(1), byCommand["incr"])
	assert.Zero(t, errorsTotal)
}

func TestMetrics_Unregistered(t *testing.T) {
	var m *Metrics
	assert.False(t, m.IsRegistered())
	m.RecordCommand(context.Background(), "get", time.Millisecond, true)
}
