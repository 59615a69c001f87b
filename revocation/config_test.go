package revocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 10*time.Minute, cfg.SweepInterval)
	assert.Equal(t, time.Duration(0), cfg.UserMarkerTTL)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Storage: StorageMemory, SweepInterval: time.Minute}, false},
		{"redis", Config{Storage: StorageRedis, RedisKeyPrefix: "p:", SweepInterval: time.Minute}, false},
		{"redis without prefix", Config{Storage: StorageRedis, SweepInterval: time.Minute}, true},
		{"unknown storage", Config{Storage: "etcd", SweepInterval: time.Minute}, true},
		{"tiny interval", Config{Storage: StorageMemory, SweepInterval: time.Millisecond}, true},
		{"negative marker ttl", Config{Storage: StorageMemory, SweepInterval: time.Minute, UserMarkerTTL: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
