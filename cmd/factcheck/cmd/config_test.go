package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/factcheck/configs"
	"github.com/Aman-CERP/factcheck/internal/config"
	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
)

func TestConfigPath(t *testing.T) {
	isolate(t)

	out, _, err := runCmd(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, config.GetUserConfigPath()+"\n", out)
}

func TestConfigInit_CreatesUserConfig(t *testing.T) {
	// Given: no user config
	isolate(t)

	// When: running config init
	out, _, err := runCmd(t, "config", "init")

	// Then: the template is written
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+config.GetUserConfigPath())
	data, err := os.ReadFile(config.GetUserConfigPath())
	require.NoError(t, err)
	assert.Equal(t, configs.UserConfigTemplate, string(data))
}

func TestConfigInit_ExistingConfigNeedsForce(t *testing.T) {
	// Given: an existing user config
	isolate(t)
	_, _, err := runCmd(t, "config", "init")
	require.NoError(t, err)
	path := config.GetUserConfigPath()
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0644))

	// When: running init without --force
	out, _, err := runCmd(t, "config", "init")

	// Then: the file is left alone
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log_level: debug\n", string(data))

	// When: running init with --force
	out, _, err = runCmd(t, "config", "init", "--force")

	// Then: the old file is backed up and replaced
	require.NoError(t, err)
	assert.Contains(t, out, "Backed up existing config")
	backups, err := config.ListUserConfigBackups()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	old, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "log_level: debug\n", string(old))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.UserConfigTemplate, string(data))
}

func TestConfigInit_RepairsBrokenConfig(t *testing.T) {
	// Given: a user config that fails validation
	isolate(t)
	path := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("search:\n  limit: -1\n"), 0644))

	// When: forcing init
	_, stderr, err := runCmd(t, "config", "init", "--force")

	// Then: the command still runs and the new config loads
	require.NoError(t, err)
	assert.Contains(t, stderr, "using defaults")
	_, err = config.Load(t.TempDir())
	assert.NoError(t, err)
}

func TestConfigInit_Project(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Chdir(dir)

	out, _, err := runCmd(t, "config", "init", "--project")

	require.NoError(t, err)
	assert.Contains(t, out, "Created")
	data, err := os.ReadFile(filepath.Join(dir, config.ProjectFileName))
	require.NoError(t, err)
	assert.Equal(t, configs.ProjectConfigTemplate, string(data))

	out, _, err = runCmd(t, "config", "init", "--project")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}

func TestConfigShow_MergedReflectsFlagsAndProjectFile(t *testing.T) {
	// Given: a project config and a --base-url flag
	isolate(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ProjectFileName),
		[]byte("search:\n  default_mode: boolean\n  limit: 25\n"), 0644))

	// When: showing the merged configuration as JSON
	out, _, err := runCmd(t, "--base-url", "http://search.internal:9000", "config", "show", "--json")

	// Then: every source is reflected
	require.NoError(t, err)
	var got config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "http://search.internal:9000", got.Backend.BaseURL)
	assert.Equal(t, "boolean", got.Search.DefaultMode)
	assert.Equal(t, 25, got.Search.Limit)
}

func TestConfigShow_DefaultsAsYAML(t *testing.T) {
	isolate(t)
	t.Setenv("FACTCHECK_LIMIT", "40")

	out, _, err := runCmd(t, "config", "show", "--source", "defaults")

	require.NoError(t, err)
	var got config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, config.NewConfig().Search.Limit, got.Search.Limit)
	assert.Equal(t, config.NewConfig().Backend.BaseURL, got.Backend.BaseURL)
}

func TestConfigShow_UnknownSource(t *testing.T) {
	isolate(t)

	_, _, err := runCmd(t, "config", "show", "--source", "remote")

	require.Error(t, err)
	assert.Equal(t, ferrors.KindInvalidInput, ferrors.GetKind(err))
}
