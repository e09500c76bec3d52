package config

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"github.com/vividtools/vivid-ide/errors"
	"github.com/vividtools/vivid-ide/pkg/paths"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// ConfigFileName is the project-local configuration file name.
const ConfigFileName = "vivid.yml"

// GlobalFileName is the global configuration file name under the config dir.
const GlobalFileName = "vivid.toml"

// Load reads and parses a project configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	expanded := expandEnvVars(string(data))
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config file").
			WithDetail("path", path)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// LoadDefault finds and loads the configuration with hierarchical merging:
// 1. Global config (~/.config/vivid/vivid.toml) - base layer
// 2. Project config (vivid.yml, found walking up from cwd) - overrides global
// Both layers are optional; absence of any config yields pure defaults.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}

	return LoadFrom(cwd)
}

// LoadFrom loads configuration with hierarchical merging starting from the given directory.
func LoadFrom(startDir string) (*Config, error) {
	return LoadFromWithLogger(startDir, logrus.New())
}

// LoadFromWithLogger loads configuration with hierarchical merging and logging.
func LoadFromWithLogger(startDir string, logger *logrus.Logger) (*Config, error) {
	var final *Config

	// 1. Load global config if it exists (optional)
	globalPath := GlobalConfigPath()
	if globalPath != "" {
		if data, err := os.ReadFile(globalPath); err == nil {
			logger.WithField("path", globalPath).Debug("Loading global configuration")
			expanded := expandEnvVars(string(data))
			var globalCfg Config
			if err := toml.Unmarshal([]byte(expanded), &globalCfg); err == nil {
				final = &globalCfg
			} else {
				logger.WithError(err).Warn("Failed to parse global configuration, continuing without it")
			}
		}
	}

	// 2. Load and merge the project config (optional)
	projectPath, err := FindConfigFile(startDir)
	if err == nil {
		logger.WithField("path", projectPath).Debug("Loading project configuration")
		data, err := os.ReadFile(projectPath)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read project config").
				WithDetail("path", projectPath)
		}

		expanded := expandEnvVars(string(data))
		var projectCfg Config
		if err := yaml.Unmarshal([]byte(expanded), &projectCfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse project config").
				WithDetail("path", projectPath)
		}

		if final == nil {
			final = &projectCfg
		} else {
			final = mergeConfigs(final, &projectCfg)
		}
	}

	if final == nil {
		final = &Config{}
	}

	final.ApplyDefaults()
	return final, nil
}

// FindConfigFile walks up from startDir looking for vivid.yml.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.ConfigNotFound(filepath.Join(startDir, ConfigFileName))
		}
		dir = parent
	}
}

// GlobalConfigPath returns the path of the global config file, or "" when the
// config directory cannot be determined.
func GlobalConfigPath() string {
	dir := paths.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, GlobalFileName)
}

// mergeConfigs overlays the project layer on the base layer. Scalar fields
// override when set; extension sections merge key-wise with project winning.
func mergeConfigs(base, overlay *Config) *Config {
	merged := *base

	if overlay.Version != "" {
		merged.Version = overlay.Version
	}
	if overlay.Theme != "" {
		merged.Theme = overlay.Theme
	}

	if overlay.Runtime.Socket != "" {
		merged.Runtime.Socket = overlay.Runtime.Socket
	}
	if overlay.Runtime.CommandTimeoutMS != 0 {
		merged.Runtime.CommandTimeoutMS = overlay.Runtime.CommandTimeoutMS
	}
	if overlay.Runtime.ReadyTimeoutMS != 0 {
		merged.Runtime.ReadyTimeoutMS = overlay.Runtime.ReadyTimeoutMS
	}
	if overlay.Runtime.ReadyPollMS != 0 {
		merged.Runtime.ReadyPollMS = overlay.Runtime.ReadyPollMS
	}
	if overlay.Runtime.ReconcileMS != 0 {
		merged.Runtime.ReconcileMS = overlay.Runtime.ReconcileMS
	}

	if overlay.Editor.TabWidth != 0 {
		merged.Editor.TabWidth = overlay.Editor.TabWidth
	}
	if overlay.Editor.AutoReloadOnSave != nil {
		merged.Editor.AutoReloadOnSave = overlay.Editor.AutoReloadOnSave
	}

	if overlay.Terminal.Shell != "" {
		merged.Terminal.Shell = overlay.Terminal.Shell
	}
	if overlay.Terminal.Scrollback != 0 {
		merged.Terminal.Scrollback = overlay.Terminal.Scrollback
	}

	if overlay.Watcher.DebounceMS != 0 {
		merged.Watcher.DebounceMS = overlay.Watcher.DebounceMS
	}
	if len(overlay.Watcher.Ignore) > 0 {
		merged.Watcher.Ignore = overlay.Watcher.Ignore
	}

	if len(overlay.Extensions) > 0 {
		if merged.Extensions == nil {
			merged.Extensions = make(map[string]interface{}, len(overlay.Extensions))
		} else {
			copied := make(map[string]interface{}, len(merged.Extensions)+len(overlay.Extensions))
			for k, v := range merged.Extensions {
				copied[k] = v
			}
			merged.Extensions = copied
		}
		for k, v := range overlay.Extensions {
			merged.Extensions[k] = v
		}
	}

	return &merged
}

// expandEnvVars substitutes ${VAR} references with environment values.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		name := envVarRegex.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}
