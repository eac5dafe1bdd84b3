package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "repository", cfg.Storage.SlotName)
	assert.Equal(t, "archrepo.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "fs", cfg.Storage.Blob.Driver)
	assert.Equal(t, "us-east-1", cfg.Storage.Blob.S3.Region)
	assert.Equal(t, "blob", cfg.Audit.Driver)
	assert.Equal(t, "audit/", cfg.Audit.Prefix)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "archrepo", cfg.Metrics.Namespace)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ARCHREPO_STORAGE_DRIVER", "memory")
	t.Setenv("ARCHREPO_STORAGE_BLOB_FS_ROOT", "/var/lib/archrepo")
	t.Setenv("ARCHREPO_LOG_FORMAT", "json")

	v := viper.New()
	t.Chdir(t.TempDir())
	require.NoError(t, Init(v, ""))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/archrepo", cfg.Storage.Blob.FSRoot)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archrepo.yaml")
	body := `
storage:
  driver: blob
  slot_name: estate
  blob:
    driver: s3
    s3:
      bucket: arch-snapshots
      endpoint: http://localhost:9000
      path_style: true
audit:
  driver: memory
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	v := viper.New()
	require.NoError(t, Init(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "blob", cfg.Storage.Driver)
	assert.Equal(t, "estate", cfg.Storage.SlotName)
	assert.Equal(t, "s3", cfg.Storage.Blob.Driver)
	assert.Equal(t, "arch-snapshots", cfg.Storage.Blob.S3.Bucket)
	assert.True(t, cfg.Storage.Blob.S3.PathStyle)
	assert.Equal(t, "memory", cfg.Audit.Driver)
	assert.Equal(t, "info", cfg.Log.Level, "unset keys keep defaults")
}

func TestInitMissingExplicitFile(t *testing.T) {
	err := Init(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	cases := map[string]func(v *viper.Viper){
		"storage driver": func(v *viper.Viper) { v.Set("storage.driver", "etcd") },
		"blob driver":    func(v *viper.Viper) { v.Set("storage.blob.driver", "ftp") },
		"postgres dsn":   func(v *viper.Viper) { v.Set("storage.driver", "postgres") },
		"s3 bucket":      func(v *viper.Viper) { v.Set("storage.blob.driver", "s3") },
		"audit driver":   func(v *viper.Viper) { v.Set("audit.driver", "kafka") },
		"log format":     func(v *viper.Viper) { v.Set("log.format", "xml") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			mutate(v)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}
