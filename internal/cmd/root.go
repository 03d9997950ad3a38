package cmd

import (
	"context"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/clawteam/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "clawteam",
	Short: "Team coordination store for multi-agent chat",
	Long: `clawteam tracks teams of agents, a dependency-aware task board and an
inter-agent message log, each scoped to a named team workspace.

Every command prints a result envelope:
  {"ok": true, "data": ...}
  {"ok": false, "error": {"kind": "...", "message": "..."}}
and exits non-zero on failure.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Cancelling ctx stops long-running
// commands such as watch-messages.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/clawteam/config.yaml)")
	rootCmd.PersistentFlags().String("teams-dir", "", "team root directory (default ~/.openclaw/teams)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: json or yaml")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("teams_dir", rootCmd.PersistentFlags().Lookup("teams-dir"))
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// A .env in the working directory may carry CLAWTEAM_* and OPENCLAW_TEAMS_DIR.
	_ = godotenv.Load()

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/clawteam")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CLAWTEAM")
	// e.g. CLAWTEAM_STORE_BACKEND for store.backend
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
