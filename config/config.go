package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ardnew/softportal/pkg"
	"github.com/ardnew/softportal/portal"
	"github.com/ardnew/softportal/toy"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SOFTPORTAL_"

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Default settings not owned by other packages.
const (
	DefaultBusDir     = "/tmp/softportal"
	DefaultStorageDir = "toys"
	DefaultSQLitePath = "toys.db"
	DefaultAdminAddr  = "127.0.0.1:8370"
)

// Config is the complete softportal configuration.
type Config struct {
	Portal    PortalConfig    `toml:"portal" yaml:"portal"`
	Transport TransportConfig `toml:"transport" yaml:"transport"`
	Storage   StorageConfig   `toml:"storage" yaml:"storage"`
	Admin     AdminConfig     `toml:"admin" yaml:"admin"`
	Log       LogConfig       `toml:"log" yaml:"log"`
}

// PortalConfig holds engine settings.
type PortalConfig struct {
	Slots        int           `toml:"slots" yaml:"slots"`
	PollInterval time.Duration `toml:"poll_interval" yaml:"poll_interval"`
	RetryDelay   time.Duration `toml:"retry_delay" yaml:"retry_delay"`
	EventQueue   int           `toml:"event_queue" yaml:"event_queue"`
}

// TransportConfig locates the FIFO bus.
type TransportConfig struct {
	BusDir string `toml:"bus_dir" yaml:"bus_dir"`
}

// StorageConfig selects where toy images live.
type StorageConfig struct {
	Driver  string `toml:"driver" yaml:"driver"`
	Dir     string `toml:"dir" yaml:"dir"`
	Path    string `toml:"path" yaml:"path"`
	Pattern string `toml:"pattern" yaml:"pattern"`
	ToySize int    `toml:"toy_size" yaml:"toy_size"`
}

// AdminConfig controls the HTTP admin API.
type AdminConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Addr    string `toml:"addr" yaml:"addr"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	d := portal.DefaultConfig()
	return Config{
		Portal: PortalConfig{
			Slots:        d.Slots,
			PollInterval: d.PollInterval,
			RetryDelay:   d.RetryDelay,
			EventQueue:   d.EventQueue,
		},
		Transport: TransportConfig{BusDir: DefaultBusDir},
		Storage: StorageConfig{
			Driver:  DriverFile,
			Dir:     DefaultStorageDir,
			Path:    DefaultSQLitePath,
			Pattern: toy.DefaultKeyPattern,
			ToySize: toy.DefaultSize,
		},
		Admin: AdminConfig{Addr: DefaultAdminAddr},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	pkg.LogDebug(pkg.ComponentConfig, "config loaded", "path", path, "driver", cfg.Storage.Driver, "busDir", cfg.Transport.BusDir)
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file into the process
// environment without replacing variables that are already set. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	pkg.LogDebug(pkg.ComponentConfig, "environment file loaded", "path", path)
	return nil
}

func decodeFile(path string, out *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, out); err != nil {
			return fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		return fmt.Errorf("config %s: unsupported format %q: %w", path, ext, pkg.ErrInvalidParameter)
	}
	return nil
}

// applyEnv overrides fields from SOFTPORTAL_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("BUS_DIR", &c.Transport.BusDir)
	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("STORAGE_DIR", &c.Storage.Dir)
	str("STORAGE_PATH", &c.Storage.Path)
	str("ADMIN_ADDR", &c.Admin.Addr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup(EnvPrefix + "SLOTS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSLOTS=%q: %w", EnvPrefix, v, pkg.ErrInvalidParameter)
		}
		c.Portal.Slots = n
	}
	if v, ok := lookup(EnvPrefix + "ADMIN_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sADMIN_ENABLED=%q: %w", EnvPrefix, v, pkg.ErrInvalidParameter)
		}
		c.Admin.Enabled = b
	}
	return nil
}

// normalize fills settings left blank by the file with defaults.
func (c *Config) normalize() {
	d := Default()
	if c.Portal.Slots == 0 {
		c.Portal.Slots = d.Portal.Slots
	}
	if c.Portal.PollInterval == 0 {
		c.Portal.PollInterval = d.Portal.PollInterval
	}
	if c.Portal.RetryDelay == 0 {
		c.Portal.RetryDelay = d.Portal.RetryDelay
	}
	if c.Portal.EventQueue == 0 {
		c.Portal.EventQueue = d.Portal.EventQueue
	}
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = d.Storage.Driver
	}
	if c.Storage.Pattern == "" {
		c.Storage.Pattern = d.Storage.Pattern
	}
	if c.Storage.ToySize == 0 {
		c.Storage.ToySize = d.Storage.ToySize
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Portal.Slots < 1 || c.Portal.Slots > portal.MaxSlots {
		return fmt.Errorf("portal.slots %d not in [1, %d]: %w", c.Portal.Slots, portal.MaxSlots, pkg.ErrInvalidParameter)
	}
	if c.Portal.PollInterval < 0 || c.Portal.RetryDelay < 0 {
		return fmt.Errorf("portal intervals must not be negative: %w", pkg.ErrInvalidParameter)
	}
	if c.Portal.EventQueue < 0 {
		return fmt.Errorf("portal.event_queue %d: %w", c.Portal.EventQueue, pkg.ErrInvalidParameter)
	}
	if strings.TrimSpace(c.Transport.BusDir) == "" {
		return fmt.Errorf("transport.bus_dir is required: %w", pkg.ErrInvalidParameter)
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.Admin.Enabled && strings.TrimSpace(c.Admin.Addr) == "" {
		return fmt.Errorf("admin.addr is required when admin is enabled: %w", pkg.ErrInvalidParameter)
	}
	if _, err := pkg.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Validate checks the storage settings for the selected driver.
func (s StorageConfig) Validate() error {
	switch s.Driver {
	case DriverFile:
		if strings.TrimSpace(s.Dir) == "" {
			return fmt.Errorf("storage.dir is required for the file driver: %w", pkg.ErrInvalidParameter)
		}
	case DriverSQLite:
		if strings.TrimSpace(s.Path) == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver: %w", pkg.ErrInvalidParameter)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q: %w", s.Driver, pkg.ErrInvalidParameter)
	}
	if err := toy.KeyPattern(s.Pattern).Validate(); err != nil {
		return fmt.Errorf("storage.pattern: %w", err)
	}
	if s.ToySize <= 0 || s.ToySize%toy.BlockSize != 0 {
		return fmt.Errorf("storage.toy_size %d is not a positive multiple of %d: %w", s.ToySize, toy.BlockSize, pkg.ErrInvalidParameter)
	}
	return nil
}

// Open opens the configured toy store.
func (s StorageConfig) Open() (toy.Store, error) {
	switch s.Driver {
	case DriverFile:
		store, err := toy.NewFileStore(s.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverSQLite:
		store, err := toy.OpenSQLite(s.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMemory:
		return toy.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage.driver %q: %w", s.Driver, pkg.ErrInvalidParameter)
	}
}

// Keys returns the slot-to-key mapping.
func (s StorageConfig) Keys() toy.KeyPattern {
	return toy.KeyPattern(s.Pattern)
}

// PortalConfig converts the settings into engine settings.
func (c Config) PortalConfig() portal.Config {
	cfg := portal.DefaultConfig()
	cfg.Slots = c.Portal.Slots
	cfg.Keys = c.Storage.Keys()
	cfg.PollInterval = c.Portal.PollInterval
	cfg.RetryDelay = c.Portal.RetryDelay
	cfg.EventQueue = c.Portal.EventQueue
	return cfg
}

// ApplyLogging installs the configured log level and format.
func (l LogConfig) ApplyLogging() error {
	level, err := pkg.ParseLogLevel(l.Level)
	if err != nil {
		return err
	}
	pkg.SetLogFormat(pkg.ParseLogFormat(l.Format))
	pkg.SetLogLevel(level)
	return nil
}
