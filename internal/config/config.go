// Package config loads archrepo settings from .archrepo.yaml, ARCHREPO_* env
// vars and CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ARCHREPO_STORAGE_DRIVER.
const EnvPrefix = "ARCHREPO"

// S3Config holds S3-compatible blob backend settings.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	PathStyle       bool   `mapstructure:"path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// BlobConfig selects the blob backend used for blob snapshot slots, audit
// logs and blob imports.
type BlobConfig struct {
	Driver string   `mapstructure:"driver"`
	FSRoot string   `mapstructure:"fs_root"`
	S3     S3Config `mapstructure:"s3"`
}

// StorageConfig selects where the repository snapshot is persisted.
type StorageConfig struct {
	Driver      string     `mapstructure:"driver"`
	SlotName    string     `mapstructure:"slot_name"`
	SQLitePath  string     `mapstructure:"sqlite_path"`
	PostgresDSN string     `mapstructure:"postgres_dsn"`
	Blob        BlobConfig `mapstructure:"blob"`
}

// AuditConfig selects the governance log sink.
type AuditConfig struct {
	Driver string `mapstructure:"driver"` // memory|blob|none
	Prefix string `mapstructure:"prefix"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text|json
}

// MetricsConfig controls the Prometheus namespace.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// Config holds all runtime configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// SetDefaults registers built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.slot_name", "repository")
	v.SetDefault("storage.sqlite_path", "archrepo.db")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.blob.driver", "fs")
	v.SetDefault("storage.blob.fs_root", ".archrepo")
	v.SetDefault("storage.blob.s3.bucket", "")
	v.SetDefault("storage.blob.s3.region", "us-east-1")
	v.SetDefault("storage.blob.s3.prefix", "")
	v.SetDefault("storage.blob.s3.endpoint", "")
	v.SetDefault("storage.blob.s3.path_style", false)
	v.SetDefault("storage.blob.s3.access_key_id", "")
	v.SetDefault("storage.blob.s3.secret_access_key", "")
	v.SetDefault("audit.driver", "blob")
	v.SetDefault("audit.prefix", "audit/")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.namespace", "archrepo")
}

// Init points v at cfgFile, or at .archrepo.yaml in the working or home
// directory, and enables ARCHREPO_* env overrides. A missing default config
// file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".archrepo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load applies defaults to v and decodes it.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres", "blob":
	default:
		return fmt.Errorf("storage.driver %q must be memory, sqlite, postgres or blob", c.Storage.Driver)
	}
	switch c.Storage.Blob.Driver {
	case "fs", "memory", "s3":
	default:
		return fmt.Errorf("storage.blob.driver %q must be fs, memory or s3", c.Storage.Blob.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("storage.postgres_dsn is required for the postgres driver")
	}
	if c.Storage.Blob.Driver == "s3" && c.Storage.Blob.S3.Bucket == "" {
		return fmt.Errorf("storage.blob.s3.bucket is required for the s3 driver")
	}
	switch c.Audit.Driver {
	case "none", "memory", "blob":
	default:
		return fmt.Errorf("audit.driver %q must be none, memory or blob", c.Audit.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}
	return nil
}
