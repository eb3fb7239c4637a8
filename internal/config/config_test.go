package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/recruiting-board/internal/config"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://board@localhost/rrhh")
	t.Setenv("BOARD_SERVER_BASE_URL", "https://rrhh.example.com")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	c, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://board@localhost/rrhh", c.Database.URL)
	assert.Equal(t, "https://rrhh.example.com", c.Server.BaseURL)
	assert.Equal(t, 30*time.Second, c.Server.Timeout)
	assert.Equal(t, "/candidatos/candidato/update-status/", c.Paths.Update)
	assert.Equal(t, "@every 1m", c.Schedule.Refresh)
	assert.Empty(t, c.Redis.URL)
	assert.Equal(t, c.Paths.BulkUpdate, c.GatewayPaths().BulkUpdate)
	assert.Equal(t, "/candidatos/proceso/asignar_supervisor/{id}/", c.GatewayPaths().AssignSupervisor)
	assert.Equal(t, "/candidatos/api/asistencia/registrar/", c.GatewayPaths().AttendanceRegister)
}

func TestLoad_Required(t *testing.T) {
	t.Run(`database url`, func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("BOARD_SERVER_BASE_URL", "https://rrhh.example.com")
		_, err := config.Load("")
		require.EqualError(t, err, "DATABASE_URL is required")
	})
	t.Run(`base url`, func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://x")
		t.Setenv("BOARD_SERVER_BASE_URL", "")
		_, err := config.Load("")
		require.Error(t, err)
	})
	t.Run(`relative base url`, func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://x")
		t.Setenv("BOARD_SERVER_BASE_URL", "/candidatos")
		_, err := config.Load("")
		require.Error(t, err)
	})
}

func TestLoad_File(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  csrf_token: abc
  timeout: 5s
redis:
  url: redis://localhost:6379/0
schedule:
  refresh: "@every 2m"
log:
  level: debug
`), 0o600))

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", c.Server.CSRFToken)
	assert.Equal(t, 5*time.Second, c.Server.Timeout)
	assert.Equal(t, "redis://localhost:6379/0", c.Redis.URL)
	assert.Equal(t, "@every 2m", c.Schedule.Refresh)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	setRequired(t)
	t.Setenv("BOARD_SERVER_CSRF_TOKEN", "from-env")
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  csrf_token: from-file\n"), 0o600))

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Server.CSRFToken)
}

func TestLoad_Invalid(t *testing.T) {
	setRequired(t)
	cases := map[string]string{
		"bad cron":    "schedule:\n  refresh: sometimes\n",
		"bad level":   "log:\n  level: loud\n",
		"bad timeout": "server:\n  timeout: 0s\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "board.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := config.Load(path)
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	setRequired(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
