package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete clawteam configuration
type Config struct {
	// TeamsDir is the root directory holding one subdirectory per team.
	// Supports ~ expansion. OPENCLAW_TEAMS_DIR overrides the file value.
	TeamsDir string        `mapstructure:"teams_dir"`
	Store    StoreConfig   `mapstructure:"store"`
	Team     TeamConfig    `mapstructure:"team"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Notify   NotifyConfig  `mapstructure:"notify"`
	Output   OutputConfig  `mapstructure:"output"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	// Backend is "file" (one JSON document per file) or "sqlite"
	Backend string `mapstructure:"backend"`
	// SQLitePath is the database file for the sqlite backend.
	// Empty means clawteam.db under the teams directory.
	SQLitePath string `mapstructure:"sqlite_path"`
	// LockTimeoutMs bounds how long a command waits for the per-team lock
	LockTimeoutMs int `mapstructure:"lock_timeout_ms"`
}

// TeamConfig holds the defaults applied when a team is created
type TeamConfig struct {
	// DefaultAgents is the roster used when create-team gets no --agents
	DefaultAgents []string `mapstructure:"default_agents"`
	// DefaultLead is the lead used when create-team gets no --lead
	DefaultLead string `mapstructure:"default_lead"`
	// RecentMessages is how many trailing messages team-status shows
	RecentMessages int `mapstructure:"recent_messages"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// File writes logs to clawteam.log under the teams directory instead of stderr
	File bool `mapstructure:"file"`
	// MaxSizeMB is the size at which clawteam.log is rotated
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated log files to keep
	MaxBackups int `mapstructure:"max_backups"`
}

// NotifyConfig configures the optional Redis event publisher.
// Publishing is disabled while RedisAddr is empty.
type NotifyConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	// ChannelPrefix is prepended to the team name to form the channel
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

// OutputConfig controls how command results are printed
type OutputConfig struct {
	// Format is "json" or "yaml"
	Format string `mapstructure:"format"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		TeamsDir: "~/.openclaw/teams",
		Store: StoreConfig{
			Backend:       "file",
			SQLitePath:    "",
			LockTimeoutMs: 10000,
		},
		Team: TeamConfig{
			DefaultAgents:  []string{"artist", "assistant", "developer"},
			DefaultLead:    "developer",
			RecentMessages: 10,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       false,
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Notify: NotifyConfig{
			RedisAddr:     "",
			RedisDB:       0,
			ChannelPrefix: "clawteam:",
		},
		Output: OutputConfig{
			Format: "json",
		},
	}
}

// LockTimeout returns the lock timeout as a time.Duration
func (c *StoreConfig) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMs) * time.Millisecond
}

// ResolveTeamsDir returns the absolute teams root with ~ expanded.
func (c *Config) ResolveTeamsDir() string {
	return expandHome(c.TeamsDir)
}

// ResolveSQLitePath returns the database path for the sqlite backend.
func (c *Config) ResolveSQLitePath() string {
	if c.Store.SQLitePath == "" {
		return filepath.Join(c.ResolveTeamsDir(), "clawteam.db")
	}
	return expandHome(c.Store.SQLitePath)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("teams_dir", defaults.TeamsDir)
	// The operator scripts export OPENCLAW_TEAMS_DIR; keep honouring it.
	_ = viper.BindEnv("teams_dir", "CLAWTEAM_TEAMS_DIR", "OPENCLAW_TEAMS_DIR")

	// Store defaults
	viper.SetDefault("store.backend", defaults.Store.Backend)
	viper.SetDefault("store.sqlite_path", defaults.Store.SQLitePath)
	viper.SetDefault("store.lock_timeout_ms", defaults.Store.LockTimeoutMs)

	// Team defaults
	viper.SetDefault("team.default_agents", defaults.Team.DefaultAgents)
	viper.SetDefault("team.default_lead", defaults.Team.DefaultLead)
	viper.SetDefault("team.recent_messages", defaults.Team.RecentMessages)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	// Notify defaults
	viper.SetDefault("notify.redis_addr", defaults.Notify.RedisAddr)
	viper.SetDefault("notify.redis_password", defaults.Notify.RedisPassword)
	viper.SetDefault("notify.redis_db", defaults.Notify.RedisDB)
	viper.SetDefault("notify.channel_prefix", defaults.Notify.ChannelPrefix)

	// Output defaults
	viper.SetDefault("output.format", defaults.Output.Format)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "clawteam")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clawteam"
	}
	return filepath.Join(home, ".config", "clawteam")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
