package cfg

import (
	"testing"

	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCacheCfg_DefaultsToRedis(t *testing.T) {
	cache, err := loadCacheCfg(logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, CacheBackendRedis, cache.Backend)
	assert.Equal(t, 10_000, cache.Size)
}

func TestLoadCacheCfg_MemoryBackend(t *testing.T) {
	t.Setenv("PRICE_CACHE_BACKEND", CacheBackendMemory)
	t.Setenv("PRICE_CACHE_SIZE", "512")

	cache, err := loadCacheCfg(logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, CacheBackendMemory, cache.Backend)
	assert.Equal(t, 512, cache.Size)
}

func TestLoadCacheCfg_Rejected(t *testing.T) {
	t.Setenv("PRICE_CACHE_BACKEND", "memcached")
	_, err := loadCacheCfg(logger.Nop())
	assert.Error(t, err)

	t.Setenv("PRICE_CACHE_BACKEND", CacheBackendMemory)
	t.Setenv("PRICE_CACHE_SIZE", "0")
	_, err = loadCacheCfg(logger.Nop())
	assert.Error(t, err)
}
