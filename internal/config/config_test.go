package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehmann314159/tasklex/internal/errors"
)

// isolate points the XDG directories and the working directory at temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	t.Cleanup(xdg.Reload)

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	xdg.Reload()

	work := t.TempDir()
	t.Chdir(work)
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func testCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("tasks-db", "", "")
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().Bool("log-json", false, "")
	return cmd
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	c, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data", "tasklex", "tasks.db"), c.TasksDB)
	assert.Equal(t, filepath.Join(home, "data", "tasklex", "vocabulary.db"), c.VocabularyDB)
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Empty(t, c.HTTP.APIToken)
	assert.Equal(t, "info", c.Log.Level)
	assert.False(t, c.Log.JSON)
	assert.NotEmpty(t, c.Dictionary.BaseURL)
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)

	writeFile(t, filepath.Join(home, "config", "tasklex", "tasklex.yaml"), `
tasks_db: /from/file/tasks.db
vocabulary_db: /from/file/vocabulary.db
http:
  addr: ":9000"
log:
  level: warn
`)
	t.Setenv("TASKLEX_HTTP_ADDR", ":9100")
	t.Setenv("TASKLEX_VOCABULARY_DB", "/from/env/vocabulary.db")

	cmd := testCommand()
	require.NoError(t, cmd.Flags().Set("tasks-db", "/from/flag/tasks.db"))

	c, err := Load(cmd, "")
	require.NoError(t, err)

	assert.Equal(t, "/from/flag/tasks.db", c.TasksDB)
	assert.Equal(t, "/from/env/vocabulary.db", c.VocabularyDB)
	assert.Equal(t, ":9100", c.HTTP.Addr)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoad_UnsetFlagsKeepLowerLayers(t *testing.T) {
	isolate(t)
	t.Setenv("TASKLEX_LOG_LEVEL", "debug")

	c, err := Load(testCommand(), "")
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TASKLEX_HTTP_API_TOKEN", "")
	require.NoError(t, os.Unsetenv("TASKLEX_HTTP_API_TOKEN"))
	writeFile(t, ".env", "TASKLEX_HTTP_API_TOKEN=secret\n")

	c, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "secret", c.HTTP.APIToken)
}

func TestLoad_ExplicitFile(t *testing.T) {
	home := isolate(t)

	path := filepath.Join(home, "custom.yaml")
	writeFile(t, path, "log:\n  json: true\n")

	c, err := Load(nil, path)
	require.NoError(t, err)
	assert.True(t, c.Log.JSON)
	assert.True(t, c.Logging().JSON)

	_, err = Load(nil, filepath.Join(home, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)
	writeFile(t, "tasklex.yaml", "log:\n  level: loud\n")

	_, err := Load(nil, "")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
