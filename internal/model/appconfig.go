package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Planner defaults
	DefaultAlgorithm Algorithm `json:"default_algorithm" mapstructure:"default_algorithm"`
	DefaultMaxDepth  int       `json:"default_max_depth" mapstructure:"default_max_depth"`
	DefaultMaxStates int       `json:"default_max_states" mapstructure:"default_max_states"`
	Verify           bool      `json:"verify" mapstructure:"verify"`

	// Runtime
	Workers    int    `json:"workers" mapstructure:"workers"`         // batch planning goroutines, 0 = one per CPU
	ListenAddr string `json:"listen_addr" mapstructure:"listen_addr"` // HTTP API address
	OutputDir  string `json:"output_dir" mapstructure:"output_dir"`

	// Logging
	LogLevel      string `json:"log_level" mapstructure:"log_level"` // "debug", "info", "warn", "error"
	LogFile       string `json:"log_file" mapstructure:"log_file"`   // empty = stderr
	LogMaxSizeMB  int    `json:"log_max_size_mb" mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `json:"log_max_backups" mapstructure:"log_max_backups"`

	RecentPlans []string `json:"recent_plans" mapstructure:"recent_plans"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultAlgorithm: defaults.Algorithm,
		DefaultMaxDepth:  defaults.MaxDepth,
		DefaultMaxStates: defaults.MaxStates,
		Verify:           defaults.Verify,
		Workers:          0,
		ListenAddr:       ":8080",
		OutputDir:        ".",
		LogLevel:         "info",
		LogMaxSizeMB:     10,
		LogMaxBackups:    3,
		RecentPlans:      []string{},
	}
}

// ApplyToSettings copies the default values from AppConfig into a PlanSettings struct.
func (c AppConfig) ApplyToSettings(s *PlanSettings) {
	if c.DefaultAlgorithm != "" {
		s.Algorithm = c.DefaultAlgorithm
	}
	if c.DefaultMaxDepth > 0 {
		s.MaxDepth = c.DefaultMaxDepth
	}
	if c.DefaultMaxStates > 0 {
		s.MaxStates = c.DefaultMaxStates
	}
	s.Verify = c.Verify
}
