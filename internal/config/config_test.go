package config

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults when no file and no environment", func(t *testing.T) {
		// when
		app, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.NoError(t, err)
		assert.Equal(t, defaults(), app)
	})

	t.Run("file overrides defaults and environment overrides file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		yaml := `
listen: ":9000"
log:
  level: debug
storage:
  driver: postgres
db:
  host: db.internal
  port: 6543
`
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
		t.Setenv("MYSTUFF_DB_HOST", "override.internal")
		t.Setenv("MYSTUFF_STORAGE_SQLITE_PATH", "/tmp/other.db")

		// when
		app, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, ":9000", app.Listen)
		assert.Equal(t, log.DebugLevel, app.LogLevel())
		assert.Equal(t, DriverPostgres, app.Storage.Driver)
		assert.Equal(t, "/tmp/other.db", app.Storage.SQLite.Path)
		assert.Equal(t, "override.internal", app.Database.Host)
		assert.Equal(t, 6543, app.Database.Port)
		assert.Equal(t, "mystuff", app.Database.Name)
	})

	t.Run("invalid result is reported", func(t *testing.T) {
		t.Setenv("MYSTUFF_STORAGE_DRIVER", "mongodb")

		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		assert.ErrorContains(t, err, `invalid storage driver "mongodb"`)
	})
}

func TestApplication_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, defaults().Validate())
	})

	t.Run("collects every problem", func(t *testing.T) {
		app := defaults()
		app.Listen = ""
		app.Log.Level = "loud"
		app.Storage.Driver = DriverPostgres
		app.Database.Host = ""
		app.Database.Port = 0

		err := app.Validate()

		require.Error(t, err)
		assert.ErrorContains(t, err, "listen address cannot be empty")
		assert.ErrorContains(t, err, `invalid log level "loud"`)
		assert.ErrorContains(t, err, "db.host cannot be empty")
		assert.ErrorContains(t, err, "invalid db.port 0")
	})

	t.Run("sqlite needs a path", func(t *testing.T) {
		app := defaults()
		app.Storage.SQLite.Path = ""

		assert.ErrorContains(t, app.Validate(), "storage.sqlite.path cannot be empty")
	})
}

func TestLoadDotEnv(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MYSTUFF_LISTEN=:7000\nMYSTUFF_LOG_LEVEL=warn\n"), 0o600))
	t.Setenv("MYSTUFF_LISTEN", "")
	require.NoError(t, os.Unsetenv("MYSTUFF_LISTEN"))
	t.Setenv("MYSTUFF_LOG_LEVEL", "error")

	// when
	loadDotEnv(path)

	// then
	assert.Equal(t, ":7000", os.Getenv("MYSTUFF_LISTEN"))
	assert.Equal(t, "error", os.Getenv("MYSTUFF_LOG_LEVEL"), "already set variables win")
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NotPanics(t, func() { loadDotEnv(filepath.Join(t.TempDir(), ".env")) })
}
