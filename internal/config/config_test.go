package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.API.Rate.MaxRequests)
	assert.Equal(t, 3*time.Second, cfg.API.Rate.Window)
	assert.Equal(t, 5, cfg.API.Rate.MaxParallel)

	assert.Equal(t, 4, cfg.API.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.API.Retry.BackoffBase)

	assert.Equal(t, 55*time.Second, cfg.API.Report.PollInterval)
	assert.Equal(t, 4, cfg.API.Report.MaxPolls)

	assert.Equal(t, 3, cfg.Sync.MaxTenants)
	assert.Equal(t, 1000, cfg.Sync.ChunkSize)
	assert.Equal(t, 14, cfg.Sync.OrdersDaysBack)
	assert.Equal(t, 250, cfg.Sync.StocksFirstRun)
	assert.Equal(t, 50, cfg.Sync.AdvertBatch)
	assert.Equal(t, 90*time.Second, cfg.Sync.AdvertInterval)

	assert.Equal(t, "sync.results", cfg.Kafka.ResultsTopic)
	assert.NotEmpty(t, cfg.Log.Level)
}

func TestLoadMergesUserFile(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	require.NoError(t, writeFile(path, "log:\n  level: debug\nsync:\n  chunk_size: 500\n"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 500, cfg.Sync.ChunkSize)
	assert.Equal(t, 3, cfg.Sync.MaxTenants, "untouched keys keep their defaults")
}
