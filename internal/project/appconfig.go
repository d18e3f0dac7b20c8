package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/PalletPlan/internal/model"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PALLETPLAN_LOG_LEVEL=debug.
const EnvPrefix = "PALLETPLAN"

// maxRecentPlans caps AppConfig.RecentPlans.
const maxRecentPlans = 10

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.palletplan/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".palletplan")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path, layered over the
// defaults and under PALLETPLAN_* environment variables.
// If the file does not exist, the defaults are used with no error.
func LoadAppConfig(path string) (model.AppConfig, error) {
	return LoadAppConfigWithFlags(path, nil, nil)
}

// LoadAppConfigWithFlags is LoadAppConfig with command-line overrides on top.
// bindings maps config keys (e.g. "log_level") to flag names; only flags the
// user actually set take effect.
func LoadAppConfigWithFlags(path string, flags *pflag.FlagSet, bindings map[string]string) (model.AppConfig, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return model.AppConfig{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for key, name := range bindings {
			f := flags.Lookup(name)
			if f == nil {
				return model.AppConfig{}, fmt.Errorf("unknown flag %q for config key %q", name, key)
			}
			if err := v.BindPFlag(key, f); err != nil {
				return model.AppConfig{}, fmt.Errorf("failed to bind flag %q: %w", name, err)
			}
		}
	}

	var config model.AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	// Ensure RecentPlans is never nil
	if config.RecentPlans == nil {
		config.RecentPlans = []string{}
	}
	return config, nil
}

// newViper returns a viper instance with every AppConfig key defaulted, which
// also makes each key visible to AutomaticEnv.
func newViper() *viper.Viper {
	v := viper.New()
	d := model.DefaultAppConfig()

	v.SetDefault("default_algorithm", string(d.DefaultAlgorithm))
	v.SetDefault("default_max_depth", d.DefaultMaxDepth)
	v.SetDefault("default_max_states", d.DefaultMaxStates)
	v.SetDefault("verify", d.Verify)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_max_size_mb", d.LogMaxSizeMB)
	v.SetDefault("log_max_backups", d.LogMaxBackups)
	v.SetDefault("recent_plans", d.RecentPlans)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}

// AddRecentPlan moves path to the front of the recent list, dropping duplicates
// and anything past the cap.
func AddRecentPlan(config *model.AppConfig, path string) {
	recent := []string{path}
	for _, p := range config.RecentPlans {
		if p != path && len(recent) < maxRecentPlans {
			recent = append(recent, p)
		}
	}
	config.RecentPlans = recent
}
