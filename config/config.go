// Package config loads the onyx configuration from an optional yaml file and
// ONYX_ prefixed environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Log      LogConfig      `mapstructure:"log"`
	Coinlore CoinloreConfig `mapstructure:"coinlore"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Journal  JournalConfig  `mapstructure:"journal"`
}

type DataConfig struct {
	Dir        string `mapstructure:"dir"`
	Backend    string `mapstructure:"backend"` // file or sqlite
	SQLitePath string `mapstructure:"sqlite_path"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type CoinloreConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
}

type WatchConfig struct {
	Schedule string `mapstructure:"schedule"`
}

type JournalConfig struct {
	ImagesDir string `mapstructure:"images_dir"`
}

// defaultDataDir is ~/.onyx, or .onyx when there is no home directory.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".onyx"
	}
	return filepath.Join(home, ".onyx")
}

// Load reads the configuration file at path. An empty path loads defaults and
// environment variables only.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ONYX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	dataDir := defaultDataDir()
	v.SetDefault("data.dir", dataDir)
	v.SetDefault("data.backend", "file")
	v.SetDefault("data.sqlite_path", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("log.disable_caller", true)
	v.SetDefault("log.disable_stacktrace", true)
	v.SetDefault("coinlore.base_url", "https://api.coinlore.net/api")
	v.SetDefault("coinlore.timeout", "10s")
	v.SetDefault("coinlore.rate_per_second", 1.0)
	v.SetDefault("watch.schedule", "@every 5m")
	v.SetDefault("journal.images_dir", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Data.SQLitePath == "" {
		cfg.Data.SQLitePath = filepath.Join(cfg.Data.Dir, "onyx.db")
	}
	if cfg.Journal.ImagesDir == "" {
		cfg.Journal.ImagesDir = filepath.Join(cfg.Data.Dir, "charts")
	}
	return cfg, nil
}
