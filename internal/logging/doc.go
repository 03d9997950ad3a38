// Package logging provides structured logging for clawteam.
//
// It wraps log/slog with a JSON handler. Every CLI invocation appends to a
// single clawteam.log under the teams root (or writes to stderr when file
// logging is disabled), so entries carry the team and command they belong to.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(teamsDir, "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithCommand("claim-task").WithTeam("alpha")
//	log.Info("task claimed", "task_id", "T001", "agent", "developer")
//
// # Rotation
//
// [RotatingWriter] rotates clawteam.log once it would exceed MaxSizeMB,
// keeping MaxBackups numbered copies (clawteam.log.1 is the newest).
package logging
