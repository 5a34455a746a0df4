package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	t.Setenv(EnvToken, "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, "Internal ID", cfg.Catalog.KeyField)
	assert.Contains(t, cfg.Catalog.EnumeratedColumns, "Blank Silo")

	_, err = os.Stat(path)
	require.NoError(t, err, "defaults are written on first load")

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Keys, again.Keys)
}

func TestLoadOrCreateReadsFile(t *testing.T) {
	t.Setenv(EnvToken, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[server]
addr = ":9000"
token = "secret"
store_backend = "pebble"

[client]
save_debounce = "250ms"
timeout = "bogus"

[catalog]
enumerated_columns = ["Size"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "pebble", cfg.Server.StoreBackend)
	assert.Equal(t, []string{"Size"}, cfg.Catalog.EnumeratedColumns)
	assert.Equal(t, 250*time.Millisecond, cfg.SaveDebounce())
	assert.Equal(t, DefaultTimeout, cfg.ClientTimeout())
	assert.Equal(t, "q", cfg.Keys.Quit, "unset keys keep defaults")
}

func TestTokenFromEnv(t *testing.T) {
	t.Setenv(EnvToken, "from-env")
	cfg, err := LoadOrCreate(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Server.Token)
	assert.Equal(t, "from-env", cfg.Client.Token)
}

func TestResolveConfigPathPrefersEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", ResolveConfigPath())
}
