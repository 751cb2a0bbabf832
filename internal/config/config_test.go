package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/artisanexperiences/boilerplate/internal/scaffold/counter"
)

// isolate points the global config and state directories at fresh temp dirs.
func isolate(t *testing.T) (configDir, stateDir string) {
	t.Helper()
	configDir = t.TempDir()
	stateDir = t.TempDir()
	t.Setenv(EnvConfigDir, configDir)
	t.Setenv(EnvStateDir, stateDir)
	return configDir, stateDir
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	_, stateDir := isolate(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultTemplateDirectories, cfg.TemplateDirectories)
	assert.Equal(t, []string{"package.json"}, cfg.Manifests)
	assert.Equal(t, ".env", cfg.EnvFile)
	assert.Equal(t, CounterStoreMemory, cfg.Counter.Store)
	assert.Equal(t, filepath.Join(stateDir, "counters.db"), cfg.Counter.Path)
	assert.False(t, cfg.Scaffold.Parallel)
	assert.Empty(t, cfg.Variables)
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	configDir, _ := isolate(t)
	workspace := t.TempDir()

	write(t, filepath.Join(configDir, "boilerplate.yaml"), `
template_directories:
  - ~/templates
env_file: .env.global
variables:
  companyName: Acme
  copyright: "(c) Acme"
scaffold:
  parallel: true
`)
	write(t, filepath.Join(workspace, ProjectConfigFile), `
env_file: .env.local
manifests: [package.json, composer.json]
variables:
  companyName: Widgets Inc
  author:
    firstName: Jane
`)

	cfg, err := Load(workspace)
	require.NoError(t, err)

	assert.Equal(t, []string{"~/templates"}, cfg.TemplateDirectories)
	assert.Equal(t, ".env.local", cfg.EnvFile)
	assert.Equal(t, []string{"package.json", "composer.json"}, cfg.Manifests)
	assert.True(t, cfg.Scaffold.Parallel)
	assert.Equal(t, map[string]any{
		"companyName": "Widgets Inc",
		"copyright":   "(c) Acme",
		"author":      map[string]any{"firstName": "Jane"},
	}, cfg.Variables)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("BOILERPLATE_COUNTER_STORE", "sqlite")
	t.Setenv("BOILERPLATE_ENV_FILE", ".env.test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, CounterStoreSQLite, cfg.Counter.Store)
	assert.Equal(t, ".env.test", cfg.EnvFile)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("invalid counter store", func(t *testing.T) {
		isolate(t)
		workspace := t.TempDir()
		write(t, filepath.Join(workspace, ProjectConfigFile), "counter:\n  store: redis\n")

		_, err := Load(workspace)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "counter.store")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		isolate(t)
		workspace := t.TempDir()
		write(t, filepath.Join(workspace, ProjectConfigFile), "variables: [unclosed\n")

		_, err := Load(workspace)
		assert.Error(t, err)
	})
}

func TestLoadProject_NotFound(t *testing.T) {
	isolate(t)
	_, err := LoadProject(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestSaveProject(t *testing.T) {
	t.Run("creates new project config", func(t *testing.T) {
		isolate(t)
		dir := t.TempDir()

		err := SaveProject(dir, &Config{
			TemplateDirectories: []string{"$WORKSPACE/templates"},
			Variables:           map[string]any{"companyName": "Acme"},
		})
		require.NoError(t, err)

		loaded, err := LoadProject(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"$WORKSPACE/templates"}, loaded.TemplateDirectories)
		assert.Equal(t, "Acme", loaded.Variables["companyName"])
	})

	t.Run("preserves existing config data", func(t *testing.T) {
		isolate(t)
		dir := t.TempDir()
		write(t, filepath.Join(dir, ProjectConfigFile), `
env_file: .env.custom
custom_field: custom_value
variables:
  keepMe: yes please
`)

		err := SaveProject(dir, &Config{
			TemplateDirectories: []string{"templates"},
			Variables:           map[string]any{"added": "value"},
			Counter:             CounterConfig{Store: CounterStoreSQLite},
		})
		require.NoError(t, err)

		content, err := os.ReadFile(filepath.Join(dir, ProjectConfigFile))
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, yaml.Unmarshal(content, &raw))
		assert.Equal(t, "custom_value", raw["custom_field"])
		assert.Equal(t, ".env.custom", raw["env_file"])
		assert.Equal(t, map[string]any{"keepMe": "yes please", "added": "value"}, raw["variables"])
		assert.Equal(t, map[string]any{"store": "sqlite"}, raw["counter"])
	})
}

func TestSaveGlobal(t *testing.T) {
	configDir, _ := isolate(t)
	nested := filepath.Join(configDir, "nested")
	t.Setenv(EnvConfigDir, nested)

	require.NoError(t, SaveGlobal(&Config{TemplateDirectories: []string{"~/tpl"}}))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"~/tpl"}, cfg.TemplateDirectories)
	assert.FileExists(t, filepath.Join(nested, "boilerplate.yaml"))
}

func TestOpenCounterStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, closeFn, err := (&Config{}).OpenCounterStore()
		require.NoError(t, err)
		defer closeFn()
		assert.Same(t, counter.Default, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state", "counters.db")
		cfg := &Config{Counter: CounterConfig{Store: CounterStoreSQLite, Path: path}}

		store, closeFn, err := cfg.OpenCounterStore()
		require.NoError(t, err)

		v, err := store.Increment("default", 1, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
		require.NoError(t, closeFn())
		assert.FileExists(t, path)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := (&Config{Counter: CounterConfig{Store: "redis"}}).OpenCounterStore()
		assert.Error(t, err)
	})
}
