package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherview/internal/domain"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cs := &configService{filePath: filepath.Join(t.TempDir(), "config.toml")}
	cfg, err := cs.Load()
	require.NoError(t, err)

	assert.Equal(t, "gopher.floodgap.com", cfg.Home)
	assert.Equal(t, 30, cfg.Transport.TimeoutSeconds)
	assert.Equal(t, ":7070", cfg.Gateway.Listen)
	assert.NotContains(t, cfg.UI.DownloadDir, "~")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cs := &configService{filePath: path}

	cfg := DefaultConfig()
	cfg.Home = "sdf.org:70/users"
	cfg.History.MaxFrames = 50
	cfg.UI.FuzzySuggestions = true
	require.NoError(t, cs.Save(cfg))

	got, err := cs.Load()
	require.NoError(t, err)
	assert.Equal(t, "sdf.org:70/users", got.Home)
	assert.Equal(t, 50, got.History.MaxFrames)
	assert.True(t, got.UI.FuzzySuggestions)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[transport]\ntimeout_seconds = 5\n"), 0644))

	cfg, err := NewConfigService().LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Transport.TimeoutSeconds)
	assert.Equal(t, int64(64<<20), cfg.Transport.MaxBytes)
	assert.Equal(t, "/v2/vs", cfg.Search.Selector)
}

func TestLoadFromPathMissing(t *testing.T) {
	_, err := NewConfigService().LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestInvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\nmax_suggestions = 0\n"), 0644))

	_, err := NewConfigService().LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestInvalidHomeRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Home = "http://example.com"
	assert.Error(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvHome, "gopher.club")
	t.Setenv(EnvProxy, "socks5://127.0.0.1:9050")

	cs := &configService{filePath: filepath.Join(t.TempDir(), "config.toml")}
	cfg, err := cs.Load()
	require.NoError(t, err)
	assert.Equal(t, "gopher.club", cfg.Home)
	assert.Equal(t, "socks5://127.0.0.1:9050", cfg.Transport.Proxy)

	home, ok := cfg.HomeAddress()
	require.True(t, ok)
	assert.Equal(t, "gopher.club", home.Hostname)
}

func TestSearchEndpoint(t *testing.T) {
	addr := DefaultConfig().SearchEndpoint()
	assert.Equal(t, "gopher.floodgap.com", addr.Hostname)
	assert.Equal(t, domain.DefaultPort, addr.Port)
	assert.Equal(t, "/v2/vs", addr.Path)
	assert.Equal(t, domain.TypeSearch, addr.Type)
}
