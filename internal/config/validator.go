package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/clawteam/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "store.lock_timeout_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	for i, l := range levels {
		levels[i] = strings.ToLower(l)
	}
	return levels
}

// ValidOutputFormats returns the list of valid result output formats
func ValidOutputFormats() []string {
	return []string{"json", "yaml"}
}

// ValidBackends returns the list of valid store backends
func ValidBackends() []string {
	return []string{"file", "sqlite"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validatePaths()...)
	errors = append(errors, c.validateStore()...)
	errors = append(errors, c.validateTeam()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateNotify()...)
	errors = append(errors, c.validateOutput()...)

	return errors
}

func (c *Config) validatePaths() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.TeamsDir) == "" {
		errors = append(errors, ValidationError{
			Field:   "teams_dir",
			Value:   c.TeamsDir,
			Message: "must not be empty",
		})
	}
	if strings.ContainsRune(c.TeamsDir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "teams_dir",
			Value:   c.TeamsDir,
			Message: "path contains invalid null character",
		})
	}
	if strings.ContainsRune(c.Store.SQLitePath, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "store.sqlite_path",
			Value:   c.Store.SQLitePath,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

func (c *Config) validateStore() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidBackends(), c.Store.Backend) {
		errors = append(errors, ValidationError{
			Field:   "store.backend",
			Value:   c.Store.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackends(), ", ")),
		})
	}

	const maxLockTimeoutMs = 600000 // 10 minutes
	if c.Store.LockTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "store.lock_timeout_ms",
			Value:   c.Store.LockTimeoutMs,
			Message: "must be positive",
		})
	} else if c.Store.LockTimeoutMs > maxLockTimeoutMs {
		errors = append(errors, ValidationError{
			Field:   "store.lock_timeout_ms",
			Value:   c.Store.LockTimeoutMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxLockTimeoutMs),
		})
	}

	return errors
}

func (c *Config) validateTeam() []ValidationError {
	var errors []ValidationError

	if len(c.Team.DefaultAgents) == 0 {
		errors = append(errors, ValidationError{
			Field:   "team.default_agents",
			Value:   c.Team.DefaultAgents,
			Message: "must list at least one agent",
		})
	}
	for i, agent := range c.Team.DefaultAgents {
		if strings.TrimSpace(agent) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("team.default_agents[%d]", i),
				Value:   agent,
				Message: "agent name cannot be empty",
			})
		}
	}

	if strings.TrimSpace(c.Team.DefaultLead) == "" {
		errors = append(errors, ValidationError{
			Field:   "team.default_lead",
			Value:   c.Team.DefaultLead,
			Message: "must not be empty",
		})
	}

	if c.Team.RecentMessages < 0 {
		errors = append(errors, ValidationError{
			Field:   "team.recent_messages",
			Value:   c.Team.RecentMessages,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	} else if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateNotify() []ValidationError {
	var errors []ValidationError

	if c.Notify.RedisDB < 0 {
		errors = append(errors, ValidationError{
			Field:   "notify.redis_db",
			Value:   c.Notify.RedisDB,
			Message: "must be non-negative",
		})
	}
	if c.Notify.RedisAddr != "" && !strings.Contains(c.Notify.RedisAddr, ":") {
		errors = append(errors, ValidationError{
			Field:   "notify.redis_addr",
			Value:   c.Notify.RedisAddr,
			Message: "must be in host:port form",
		})
	}

	return errors
}

func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOutputFormats(), ", ")),
		})
	}

	return errors
}
