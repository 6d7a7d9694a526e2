package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "semindex.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/semindex"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Environment variables overriding file configuration.
const (
	EnvNATSURL     = "SEMINDEX_NATS_URL"
	EnvMetricsAddr = "SEMINDEX_METRICS_ADDR"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
	// getenv and workDir are swapped in tests
	getenv  func(string) string
	workDir func() (string, error)
	homeDir func() (string, error)
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:  logger,
		getenv:  os.Getenv,
		workDir: os.Getwd,
		homeDir: os.UserHomeDir,
	}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/semindex/config.yaml)
// 3. Project config (semindex.yaml in current or parent directories)
// 4. Environment variables
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if _, statErr := os.Stat(userConfigPath); !os.IsNotExist(statErr) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	l.applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFile loads an explicit config file on top of the defaults. Environment
// overrides still apply.
func (l *Loader) LoadFile(path string) (*Config, error) {
	fileConfig, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	config.Merge(fileConfig)
	l.logger.Debug("Loaded config file", slog.String("path", path))

	l.applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (l *Loader) applyEnv(config *Config) {
	if v := l.getenv(EnvNATSURL); v != "" {
		config.NATS.URL = v
		l.logger.Debug("NATS URL from environment", slog.String("var", EnvNATSURL))
	} else if v := l.getenv("NATS_URL"); v != "" {
		config.NATS.URL = v
		l.logger.Debug("NATS URL from environment", slog.String("var", "NATS_URL"))
	}
	if v := l.getenv(EnvMetricsAddr); v != "" {
		config.Metrics.Addr = v
	}
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := l.homeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for semindex.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := l.workDir()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
