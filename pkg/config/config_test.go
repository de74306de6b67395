package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "pos-ledger", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.Ledger.GatewayTimeout)
	assert.Equal(t, 10*time.Second, cfg.Ledger.BarcodeTimeout)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LEDGER_GATEWAY_TIMEOUT", "3s")
	t.Setenv("LEDGER_BARCODE_TIMEOUT", "7")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_CATALOG_TTL", "1m")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.Ledger.GatewayTimeout)
	assert.Equal(t, 7*time.Second, cfg.Ledger.BarcodeTimeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Minute, cfg.Redis.CatalogTTL)
}

func TestLoad_TimeoutInvalido(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LEDGER_GATEWAY_TIMEOUT", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaContrasena(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "pos", Password: "p@ss/word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://pos:p%40ss%2Fword@db:5432/ledger?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}

// chdir cambia el directorio de trabajo durante el test y lo restaura al terminar.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
