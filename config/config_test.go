package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/softportal/pkg"
	"github.com/ardnew/softportal/toy"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 16, cfg.Portal.Slots)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.False(t, cfg.Admin.Enabled)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "softportal.toml", `
[portal]
slots = 1
poll_interval = "20ms"
retry_delay = "1s"

[transport]
bus_dir = "/run/portal"

[storage]
driver = "SQLite"
path = "/var/lib/portal/toys.db"
pattern = "toy-%d.img"

[admin]
enabled = true
addr = ":9000"

[log]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Portal.Slots)
	assert.Equal(t, 20*time.Millisecond, cfg.Portal.PollInterval)
	assert.Equal(t, time.Second, cfg.Portal.RetryDelay)
	assert.Equal(t, Default().Portal.EventQueue, cfg.Portal.EventQueue)
	assert.Equal(t, "/run/portal", cfg.Transport.BusDir)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/portal/toys.db", cfg.Storage.Path)
	assert.Equal(t, "toy-3.img", cfg.Storage.Keys().Key(3))
	assert.Equal(t, toy.DefaultSize, cfg.Storage.ToySize)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, ":9000", cfg.Admin.Addr)
	assert.Equal(t, "json", cfg.Log.Format)

	pc := cfg.PortalConfig()
	assert.Equal(t, 1, pc.Slots)
	assert.Equal(t, 20*time.Millisecond, pc.PollInterval)
	assert.Equal(t, toy.KeyPattern("toy-%d.img"), pc.Keys)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "softportal.yaml", `
portal:
  slots: 2
  event_queue: 4
storage:
  driver: memory
  toy_size: 64
log:
  level: warn
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Portal.Slots)
	assert.Equal(t, 4, cfg.Portal.EventQueue)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 64, cfg.Storage.ToySize)
	assert.Equal(t, DefaultBusDir, cfg.Transport.BusDir)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unsupported format", "softportal.json", `{}`},
		{"bad toml", "softportal.toml", `[portal`},
		{"bad yaml", "softportal.yml", "portal: [1"},
		{"too many slots", "softportal.toml", "[portal]\nslots = 17"},
		{"unknown driver", "softportal.toml", "[storage]\ndriver = \"s3\""},
		{"bad pattern", "softportal.toml", "[storage]\npattern = \"fixed.bin\""},
		{"partial block", "softportal.toml", "[storage]\ntoy_size = 100"},
		{"bad level", "softportal.toml", "[log]\nlevel = \"loud\""},
		{"admin without addr", "softportal.toml", "[admin]\nenabled = true\naddr = \" \""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"BUS_DIR", "/env/bus")
	t.Setenv(EnvPrefix+"STORAGE_DRIVER", "memory")
	t.Setenv(EnvPrefix+"SLOTS", "3")
	t.Setenv(EnvPrefix+"ADMIN_ENABLED", "true")
	t.Setenv(EnvPrefix+"ADMIN_ADDR", "localhost:1")

	path := writeFile(t, "softportal.toml", "[transport]\nbus_dir = \"/file/bus\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/bus", cfg.Transport.BusDir)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Portal.Slots)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, "localhost:1", cfg.Admin.Addr)
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"slots", map[string]string{EnvPrefix + "SLOTS": "many"}},
		{"admin", map[string]string{EnvPrefix + "ADMIN_ENABLED": "perhaps"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.applyEnv(func(k string) (string, bool) {
				v, ok := tt.env[k]
				return v, ok
			})
			assert.ErrorIs(t, err, pkg.ErrInvalidParameter)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = EnvPrefix + "DOTENV_PROBE"
	t.Cleanup(func() { os.Unsetenv(key) })

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))

	path := writeFile(t, ".env", key+"=from-file\n")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv(key))

	// existing variables win
	t.Setenv(key, "from-env")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv(key))
}

func TestStorageConfig_Open(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  StorageConfig
		want any
	}{
		{"file", StorageConfig{Driver: DriverFile, Dir: filepath.Join(dir, "toys")}, &toy.FileStore{}},
		{"sqlite", StorageConfig{Driver: DriverSQLite, Path: filepath.Join(dir, "toys.db")}, &toy.SQLiteStore{}},
		{"memory", StorageConfig{Driver: DriverMemory}, &toy.MemoryStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := tt.cfg.Open()
			require.NoError(t, err)
			defer store.Close()
			assert.IsType(t, tt.want, store)

			require.NoError(t, store.Save("slot-00.bin", toy.Blank(toy.BlockSize)))
			data, err := store.Load("slot-00.bin")
			require.NoError(t, err)
			assert.Len(t, data, toy.BlockSize)
		})
	}

	_, err := StorageConfig{Driver: "tape"}.Open()
	assert.ErrorIs(t, err, pkg.ErrInvalidParameter)
}

func TestLogConfig_ApplyLogging(t *testing.T) {
	prev := pkg.GetLogLevel()
	t.Cleanup(func() {
		pkg.SetLogLevel(prev)
		pkg.SetLogFormat(pkg.LogFormatText)
	})

	require.NoError(t, LogConfig{Level: "debug", Format: "json"}.ApplyLogging())
	assert.Equal(t, slog.LevelDebug, pkg.GetLogLevel())

	assert.Error(t, LogConfig{Level: "chatty"}.ApplyLogging())
}
