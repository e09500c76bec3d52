package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Config is the root of the vivid IDE configuration. The global layer lives
// at ~/.config/vivid/vivid.toml; a project may override it with a vivid.yml
// found by walking up from the working directory.
type Config struct {
	// Version of the configuration format (e.g. "1").
	Version string `yaml:"version" toml:"version" jsonschema:"required,description=Configuration format version"`

	// Theme selects the color theme for the TUI.
	Theme string `yaml:"theme,omitempty" toml:"theme,omitempty" jsonschema:"description=Color theme name (kanagawa, gruvbox, ...)"`

	// Runtime configures the connection to the vivid runtime process.
	Runtime RuntimeConfig `yaml:"runtime,omitempty" toml:"runtime,omitempty" jsonschema:"description=Runtime bridge settings"`

	// Editor configures the code editor panel.
	Editor EditorConfig `yaml:"editor,omitempty" toml:"editor,omitempty" jsonschema:"description=Editor panel settings"`

	// Terminal configures the embedded terminal panel.
	Terminal TerminalConfig `yaml:"terminal,omitempty" toml:"terminal,omitempty" jsonschema:"description=Terminal panel settings"`

	// Watcher configures the hot-reload save watcher.
	Watcher WatcherConfig `yaml:"watcher,omitempty" toml:"watcher,omitempty" jsonschema:"description=Hot-reload watcher settings"`

	// Keybindings maps a scope name ("app", "inspector", "console", ...) to
	// keybinding overrides for that scope.
	Keybindings map[string]KeybindingSectionConfig `yaml:"keybindings,omitempty" toml:"keybindings,omitempty" jsonschema:"description=Per-scope keybinding overrides"`

	// Extensions holds tool-specific configuration sections that are not part
	// of the core schema (e.g. "logging").
	Extensions map[string]interface{} `yaml:",inline" toml:"-" jsonschema:"-"`
}

// RuntimeConfig configures the command/event bridge to the native runtime.
type RuntimeConfig struct {
	// Socket is the path of the runtime control socket. Empty means the
	// XDG default ($XDG_RUNTIME_DIR/vivid/runtime.sock).
	Socket string `yaml:"socket,omitempty" toml:"socket,omitempty" jsonschema:"description=Path of the runtime control socket"`

	// CommandTimeoutMS bounds every command invocation. Default 10000.
	CommandTimeoutMS int `yaml:"command_timeout_ms,omitempty" toml:"command_timeout_ms,omitempty" jsonschema:"description=Per-command timeout in milliseconds"`

	// ReadyTimeoutMS bounds the startup readiness poll. Default 3000.
	ReadyTimeoutMS int `yaml:"ready_timeout_ms,omitempty" toml:"ready_timeout_ms,omitempty" jsonschema:"description=Readiness poll timeout in milliseconds"`

	// ReadyPollMS is the readiness poll interval. Default 100.
	ReadyPollMS int `yaml:"ready_poll_ms,omitempty" toml:"ready_poll_ms,omitempty" jsonschema:"description=Readiness poll interval in milliseconds"`

	// ReconcileMS is the steady-state reconciliation poll interval. Default 2000.
	ReconcileMS int `yaml:"reconcile_ms,omitempty" toml:"reconcile_ms,omitempty" jsonschema:"description=Background reconciliation interval in milliseconds"`
}

// EditorConfig configures the code editor panel.
type EditorConfig struct {
	TabWidth int `yaml:"tab_width,omitempty" toml:"tab_width,omitempty" jsonschema:"description=Tab width in columns (default 4)"`

	// AutoReloadOnSave triggers a project reload when the chain source is saved.
	AutoReloadOnSave *bool `yaml:"auto_reload_on_save,omitempty" toml:"auto_reload_on_save,omitempty" jsonschema:"description=Reload the project after saving chain sources (default true)"`
}

// TerminalConfig configures the embedded terminal panel.
type TerminalConfig struct {
	// Shell overrides $SHELL for spawned sessions.
	Shell string `yaml:"shell,omitempty" toml:"shell,omitempty" jsonschema:"description=Shell binary for terminal sessions"`

	// Scrollback is the number of retained output lines (default 2000).
	Scrollback int `yaml:"scrollback,omitempty" toml:"scrollback,omitempty" jsonschema:"description=Retained scrollback lines"`
}

// WatcherConfig configures the hot-reload save watcher.
type WatcherConfig struct {
	// DebounceMS coalesces rapid write bursts. Default 150.
	DebounceMS int `yaml:"debounce_ms,omitempty" toml:"debounce_ms,omitempty" jsonschema:"description=Debounce window for file change bursts in milliseconds"`

	// Ignore lists dockerignore-style patterns excluded from watching.
	Ignore []string `yaml:"ignore,omitempty" toml:"ignore,omitempty" jsonschema:"description=Patterns excluded from the save watcher"`
}

// KeybindingSectionConfig maps snake_case action names to the key
// combinations that replace the defaults, e.g. "toggle_console: [F3]".
type KeybindingSectionConfig map[string][]string

// ApplyDefaults fills zero-valued fields with their documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Theme == "" {
		c.Theme = "kanagawa"
	}
	if c.Runtime.CommandTimeoutMS == 0 {
		c.Runtime.CommandTimeoutMS = 10000
	}
	if c.Runtime.ReadyTimeoutMS == 0 {
		c.Runtime.ReadyTimeoutMS = 3000
	}
	if c.Runtime.ReadyPollMS == 0 {
		c.Runtime.ReadyPollMS = 100
	}
	if c.Runtime.ReconcileMS == 0 {
		c.Runtime.ReconcileMS = 2000
	}
	if c.Editor.TabWidth == 0 {
		c.Editor.TabWidth = 4
	}
	if c.Terminal.Scrollback == 0 {
		c.Terminal.Scrollback = 2000
	}
	if c.Watcher.DebounceMS == 0 {
		c.Watcher.DebounceMS = 150
	}
	if len(c.Watcher.Ignore) == 0 {
		c.Watcher.Ignore = []string{"build/", ".vivid/", ".git/", "*.o", "*.dylib", "*.so"}
	}
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded vivid.yml into the provided target struct. The target must be a
// pointer. This provides a type-safe way for tools to access their custom
// configuration sections.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		// The target struct will simply remain zero-valued.
		return nil
	}

	// Use mapstructure to decode the generic map[string]interface{}
	// into the strongly-typed target struct. We configure it to use
	// `yaml` tags for consistency.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
