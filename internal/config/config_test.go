package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.TeamsDir != "~/.openclaw/teams" {
		t.Errorf("TeamsDir = %q, want %q", cfg.TeamsDir, "~/.openclaw/teams")
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, "file")
	}
	if cfg.Store.LockTimeoutMs != 10000 {
		t.Errorf("Store.LockTimeoutMs = %d, want 10000", cfg.Store.LockTimeoutMs)
	}

	wantAgents := []string{"artist", "assistant", "developer"}
	if len(cfg.Team.DefaultAgents) != len(wantAgents) {
		t.Fatalf("Team.DefaultAgents = %v, want %v", cfg.Team.DefaultAgents, wantAgents)
	}
	for i, a := range wantAgents {
		if cfg.Team.DefaultAgents[i] != a {
			t.Errorf("Team.DefaultAgents[%d] = %q, want %q", i, cfg.Team.DefaultAgents[i], a)
		}
	}
	if cfg.Team.DefaultLead != "developer" {
		t.Errorf("Team.DefaultLead = %q, want %q", cfg.Team.DefaultLead, "developer")
	}
	if cfg.Team.RecentMessages != 10 {
		t.Errorf("Team.RecentMessages = %d, want 10", cfg.Team.RecentMessages)
	}

	if cfg.Logging.File {
		t.Error("Logging.File should be false by default")
	}
	if cfg.Notify.RedisAddr != "" {
		t.Errorf("Notify.RedisAddr = %q, want empty", cfg.Notify.RedisAddr)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "json")
	}
}

func TestStoreConfig_LockTimeout(t *testing.T) {
	tests := []struct {
		ms       int
		expected time.Duration
	}{
		{100, 100 * time.Millisecond},
		{10000, 10 * time.Second},
		{0, 0},
	}

	for _, tt := range tests {
		cfg := StoreConfig{LockTimeoutMs: tt.ms}
		if got := cfg.LockTimeout(); got != tt.expected {
			t.Errorf("LockTimeout() with %dms = %v, want %v", tt.ms, got, tt.expected)
		}
	}
}

func TestConfig_ResolveTeamsDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name     string
		dir      string
		expected string
	}{
		{"tilde prefix", "~/.openclaw/teams", filepath.Join(home, ".openclaw", "teams")},
		{"bare tilde", "~", home},
		{"absolute", "/srv/teams", "/srv/teams"},
		{"relative", "teams", "teams"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{TeamsDir: tt.dir}
			if got := cfg.ResolveTeamsDir(); got != tt.expected {
				t.Errorf("ResolveTeamsDir() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConfig_ResolveSQLitePath(t *testing.T) {
	cfg := &Config{TeamsDir: "/srv/teams"}
	if got := cfg.ResolveSQLitePath(); got != "/srv/teams/clawteam.db" {
		t.Errorf("ResolveSQLitePath() = %q, want %q", got, "/srv/teams/clawteam.db")
	}

	cfg.Store.SQLitePath = "/var/lib/clawteam.db"
	if got := cfg.ResolveSQLitePath(); got != "/var/lib/clawteam.db" {
		t.Errorf("ResolveSQLitePath() = %q, want %q", got, "/var/lib/clawteam.db")
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got := ConfigDir(); got != "/custom/config/clawteam" {
			t.Errorf("ConfigDir() = %q, want %q", got, "/custom/config/clawteam")
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "clawteam")
		if got := ConfigDir(); got != expected {
			t.Errorf("ConfigDir() = %q, want %q", got, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got := ConfigFile(); got != "/custom/config/clawteam/config.yaml" {
		t.Errorf("ConfigFile() = %q, want %q", got, "/custom/config/clawteam/config.yaml")
	}
}

func TestLoad_TeamsDirFromEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("CLAWTEAM_TEAMS_DIR", "")
	t.Setenv("OPENCLAW_TEAMS_DIR", "/tmp/openclaw-teams")
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TeamsDir != "/tmp/openclaw-teams" {
		t.Errorf("TeamsDir = %q, want %q", cfg.TeamsDir, "/tmp/openclaw-teams")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("store.backend", "etcd")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail for an unknown backend")
	}
	var verrs ValidationErrors
	if !asValidationErrors(err, &verrs) {
		t.Fatalf("Load() error type = %T, want ValidationErrors", err)
	}
	if verrs[0].Field != "store.backend" {
		t.Errorf("Field = %q, want %q", verrs[0].Field, "store.backend")
	}
}

func asValidationErrors(err error, target *ValidationErrors) bool {
	v, ok := err.(ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}
