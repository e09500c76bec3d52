package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "vivid.yml"), `
version: "1"
theme: gruvbox
runtime:
  command_timeout_ms: 5000
logging:
  level: debug
`)

	cfg, err := Load(filepath.Join(dir, "vivid.yml"))
	require.NoError(t, err)
	require.Equal(t, "gruvbox", cfg.Theme)
	require.Equal(t, 5000, cfg.Runtime.CommandTimeoutMS)

	// Defaults applied for unset fields
	require.Equal(t, 3000, cfg.Runtime.ReadyTimeoutMS)
	require.Equal(t, 100, cfg.Runtime.ReadyPollMS)
	require.Equal(t, 2000, cfg.Runtime.ReconcileMS)
}

func TestFindConfigFileWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "vivid.yml"), "version: \"1\"\n")
	nested := filepath.Join(root, "src", "operators")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := FindConfigFile(nested)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "vivid.yml"), found)
}

func TestLoadFromMergesGlobalAndProject(t *testing.T) {
	home := t.TempDir()
	t.Setenv("VIVID_HOME", home)
	writeFile(t, filepath.Join(home, "config", "vivid.toml"), `
version = "1"
theme = "kanagawa"

[terminal]
shell = "/bin/zsh"
`)

	project := t.TempDir()
	writeFile(t, filepath.Join(project, "vivid.yml"), `
version: "1"
theme: gruvbox
`)

	cfg, err := LoadFrom(project)
	require.NoError(t, err)
	// Project overrides global
	require.Equal(t, "gruvbox", cfg.Theme)
	// Global survives where project is silent
	require.Equal(t, "/bin/zsh", cfg.Terminal.Shell)
}

func TestLoadFromNoConfigYieldsDefaults(t *testing.T) {
	t.Setenv("VIVID_HOME", t.TempDir())
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "kanagawa", cfg.Theme)
	require.Equal(t, 10000, cfg.Runtime.CommandTimeoutMS)
	require.Equal(t, 150, cfg.Watcher.DebounceMS)
}

func TestEnvVarExpansion(t *testing.T) {
	t.Setenv("VIVID_TEST_SOCKET", "/tmp/test.sock")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "vivid.yml"), `
version: "1"
runtime:
  socket: ${VIVID_TEST_SOCKET}
`)

	cfg, err := Load(filepath.Join(dir, "vivid.yml"))
	require.NoError(t, err)
	require.Equal(t, "/tmp/test.sock", cfg.Runtime.Socket)
}

func TestUnmarshalExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "vivid.yml"), `
version: "1"
logging:
  level: debug
  report_caller: true
`)

	cfg, err := Load(filepath.Join(dir, "vivid.yml"))
	require.NoError(t, err)

	var logCfg struct {
		Level        string `yaml:"level"`
		ReportCaller bool   `yaml:"report_caller"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	require.Equal(t, "debug", logCfg.Level)
	require.True(t, logCfg.ReportCaller)

	// Missing extension leaves the target zero-valued
	var other struct {
		Anything string `yaml:"anything"`
	}
	require.NoError(t, cfg.UnmarshalExtension("missing", &other))
	require.Empty(t, other.Anything)
}

func TestSchemaValidation(t *testing.T) {
	v, err := NewSchemaValidator()
	require.NoError(t, err)

	var good map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(`
version: "1"
runtime:
  ready_poll_ms: 100
`), &good))
	require.NoError(t, v.Validate(good))

	var bad map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(`
runtime:
  ready_poll_ms: -5
`), &bad))
	require.Error(t, v.Validate(bad))
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)
	require.Contains(t, string(data), "Vivid IDE Configuration")
	require.Contains(t, string(data), "runtime")
}
