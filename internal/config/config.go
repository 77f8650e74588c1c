package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aryankumar/pkmeans/internal/util"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultConfigName = ".pkmeans"
	envPrefix         = "PKMEANS"

	// DefaultFormat is the output format used when none is configured.
	DefaultFormat = "text"
	// DefaultParallel is the number of sweep runs in flight.
	DefaultParallel = 2
)

// DefaultThreads are the worker counts compared by sweep.
var DefaultThreads = []int{1, 2, 4, 8}

var validFormats = map[string]bool{"text": true, "table": true, "json": true, "yaml": true}

// Manager loads pkmeans configuration from a file, the environment and
// command line flags, in increasing order of precedence.
type Manager struct {
	configPath string
	config     *Config
	viper      *viper.Viper
}

// NewManager creates a new configuration manager. An empty path searches
// for .pkmeans.yaml in the home directory.
func NewManager(configPath string) *Manager {
	v := viper.New()
	v.SetDefault("run.maxIterations", 0)
	v.SetDefault("output.format", DefaultFormat)
	v.SetDefault("sweep.threads", DefaultThreads)
	v.SetDefault("sweep.parallel", DefaultParallel)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Manager{
		configPath: configPath,
		viper:      v,
		config:     &Config{},
	}
}

// BindFlag makes flag override the configuration key when it is set on
// the command line.
func (m *Manager) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind for %q", key)
	}
	return m.viper.BindPFlag(key, flag)
}

// Load reads the configuration, applies defaults and validates it.
func (m *Manager) Load() (*Config, error) {
	if m.configPath != "" {
		m.viper.SetConfigFile(m.configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		m.viper.AddConfigPath(home)
		m.viper.SetConfigName(defaultConfigName)
		m.viper.SetConfigType("yaml")
	}

	if err := m.viper.ReadInConfig(); err != nil {
		// A missing file is fine, a broken one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := m.viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	m.config = cfg
	return cfg, nil
}

// Path returns the file Save writes to: the explicit config path, or
// .pkmeans.yaml in the home directory.
func (m *Manager) Path() (string, error) {
	if m.configPath != "" {
		return m.configPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, defaultConfigName+".yaml"), nil
}

// Save writes the current settings, flags and environment included, to
// Path.
func (m *Manager) Save() error {
	path, err := m.Path()
	if err != nil {
		return err
	}
	if err := m.viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetConfig returns the configuration from the last successful Load.
func (m *Manager) GetConfig() *Config {
	return m.config
}

// ConfigFileUsed returns the file Load read, if any.
func (m *Manager) ConfigFileUsed() string {
	return m.viper.ConfigFileUsed()
}

func applyDefaults(cfg *Config) {
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultFormat
	}
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	if cfg.Sweep.Parallel == 0 {
		cfg.Sweep.Parallel = DefaultParallel
	}
	if len(cfg.Sweep.Threads) == 0 {
		cfg.Sweep.Threads = append([]int(nil), DefaultThreads...)
	}
}

// Validate checks cfg for values the engine or the commands cannot use.
func Validate(cfg *Config) error {
	var errs util.MultiError

	if cfg.Run.MaxIterations < 0 {
		errs.Add(util.NewValidationError("max-iterations", cfg.Run.MaxIterations, "must not be negative"))
	}
	if !validFormats[cfg.Output.Format] {
		errs.Add(util.NewValidationError("output", cfg.Output.Format, "must be one of text, table, json, yaml"))
	}
	if cfg.Sweep.Parallel < 0 {
		errs.Add(util.NewValidationError("parallel", cfg.Sweep.Parallel, "must be positive"))
	}
	for _, t := range cfg.Sweep.Threads {
		if t <= 0 {
			errs.Add(util.NewValidationError("threads", t, "must be positive"))
			break
		}
	}

	return errs.ErrorOrNil()
}
