package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "postgres", cfg.App.StorageDriver)
	assert.False(t, cfg.Inventory.AllowNegativeSales)
	assert.True(t, cfg.Inventory.AllowNegativeAdjustments)
	assert.Equal(t, 5, cfg.Inventory.MaxRetries)
	assert.Equal(t, "VTA", cfg.Sales.OrderPrefix)
	assert.Equal(t, "0 3 * * *", cfg.Worker.ReconcileCron)
	assert.Equal(t, 4, cfg.Worker.ReconcileConcurrency)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Sobrescrituras(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "Memory")
	v.Set("INVENTORY_ALLOW_NEGATIVE_SALES", "true")
	v.Set("INVENTORY_MAX_RETRIES", "9")
	v.Set("BALANCE_CACHE_TTL_SECONDS", 5)
	v.Set("DB_USER", "inv")
	v.Set("DB_PASSWORD", "p@ss:word")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.App.StorageDriver)
	assert.True(t, cfg.Inventory.AllowNegativeSales)
	assert.Equal(t, 9, cfg.Inventory.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Redis.CacheTTL)
	assert.Contains(t, cfg.DB.ConnectionString(), "inv:p%40ss%3Aword@localhost:5432/stock_ledger")
}

func TestFromViper_Invalida(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "mysql")
	_, err := config.FromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("INVENTORY_MAX_RETRIES", 0)
	_, err = config.FromViper(v)
	assert.Error(t, err)
}
