package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/clawteam/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage clawteam configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented config file",
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show where configuration is read from",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Notify.RedisPassword != "" {
		cfg.Notify.RedisPassword = "********"
	}

	settings := map[string]any{
		"teams_dir": cfg.TeamsDir,
		"store": map[string]any{
			"backend":         cfg.Store.Backend,
			"sqlite_path":     cfg.Store.SQLitePath,
			"lock_timeout_ms": cfg.Store.LockTimeoutMs,
		},
		"team": map[string]any{
			"default_agents":  cfg.Team.DefaultAgents,
			"default_lead":    cfg.Team.DefaultLead,
			"recent_messages": cfg.Team.RecentMessages,
		},
		"logging": map[string]any{
			"level":       cfg.Logging.Level,
			"file":        cfg.Logging.File,
			"max_size_mb": cfg.Logging.MaxSizeMB,
			"max_backups": cfg.Logging.MaxBackups,
		},
		"notify": map[string]any{
			"redis_addr":     cfg.Notify.RedisAddr,
			"redis_password": cfg.Notify.RedisPassword,
			"redis_db":       cfg.Notify.RedisDB,
			"channel_prefix": cfg.Notify.ChannelPrefix,
		},
		"output": map[string]any{
			"format": cfg.Output.Format,
		},
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return err
	}
	return enc.Close()
}

const configTemplate = `# clawteam configuration

# Root directory holding one subdirectory per team.
# OPENCLAW_TEAMS_DIR or CLAWTEAM_TEAMS_DIR override this.
teams_dir: ~/.openclaw/teams

store:
  # file: team.json, tasks.json and messages.json per team
  # sqlite: one database, see sqlite_path
  backend: file
  # Empty means clawteam.db under teams_dir
  sqlite_path: ""
  # How long a command waits for another command on the same team
  lock_timeout_ms: 10000

team:
  # Roster and lead used when create-team gets no --agents / --lead
  default_agents: [artist, assistant, developer]
  default_lead: developer
  # Messages shown by team-status
  recent_messages: 10

logging:
  # debug, info, warn, error
  level: info
  # Write clawteam.log under teams_dir instead of stderr
  file: false
  max_size_mb: 10
  max_backups: 3

notify:
  # Publish events to Redis when set, e.g. localhost:6379
  redis_addr: ""
  redis_password: ""
  redis_db: 0
  channel_prefix: "clawteam:"

output:
  # json or yaml
  format: json
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintln(out, "  2. $HOME/.config/clawteam/config.yaml")
	fmt.Fprintln(out, "  3. ./config.yaml (current directory)")
	fmt.Fprintln(out, "\nEnvironment variables: CLAWTEAM_* (e.g., CLAWTEAM_STORE_BACKEND), OPENCLAW_TEAMS_DIR")
	return nil
}
