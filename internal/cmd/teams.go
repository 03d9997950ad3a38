package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/clawteam/internal/errors"
	"github.com/Iron-Ham/clawteam/internal/team"
)

var createTeamCmd = &cobra.Command{
	Use:   "create-team",
	Short: "Create a team",
	Long: `Create a team workspace with an empty task board and message log.

Fails if an active team with the same name exists. A closed team is
replaced. The lead is added to the roster if it is not already on it.

Examples:
  clawteam create-team --name alpha
  clawteam create-team --name alpha --agents a,b,c --lead developer`,
	RunE: run(runCreateTeam),
}

var listTeamsCmd = &cobra.Command{
	Use:   "list-teams",
	Short: "List all teams",
	RunE:  run(runListTeams),
}

var teamStatusCmd = &cobra.Command{
	Use:   "team-status",
	Short: "Show a team with its tasks and recent messages",
	RunE:  run(runTeamStatus),
}

var closeTeamCmd = &cobra.Command{
	Use:   "close-team",
	Short: "Close a team",
	Long:  `Mark a team closed. Its documents are kept. Closing again re-stamps closed_at.`,
	RunE:  run(runCloseTeam),
}

var setRoutingCmd = &cobra.Command{
	Use:   "set-routing",
	Short: "Record a team's chat group and forum topics",
	Long: `Record the chat group and forum topic ids a chat bridge uses for a team.

Topics are merged into the existing map unless --replace is given, which
drops topics not named. Ids of zero or less are ignored.

Example:
  clawteam set-routing --name alpha --group-id -1001234 --topic code=12 --topic design=13`,
	RunE: run(runSetRouting),
}

var (
	teamName     string
	teamAgents   string
	teamLead     string
	teamGroupID  string
	teamRepo     string
	statusRecent int
	routeTopics  []string
	routeReplace bool
)

func init() {
	createTeamCmd.Flags().StringVar(&teamName, "name", "", "team name")
	createTeamCmd.Flags().StringVar(&teamAgents, "agents", "", "comma separated agent ids (default from config)")
	createTeamCmd.Flags().StringVar(&teamLead, "lead", "", "lead agent id (default from config)")
	createTeamCmd.Flags().StringVar(&teamGroupID, "group-id", "", "chat group identifier")
	createTeamCmd.Flags().StringVar(&teamRepo, "repo", "", "repository path shared by the agents")
	_ = createTeamCmd.MarkFlagRequired("name")

	teamStatusCmd.Flags().StringVar(&teamName, "name", "", "team name")
	teamStatusCmd.Flags().IntVar(&statusRecent, "recent", -1, "number of recent messages (default from config, 0 for all)")
	_ = teamStatusCmd.MarkFlagRequired("name")

	closeTeamCmd.Flags().StringVar(&teamName, "name", "", "team name")
	_ = closeTeamCmd.MarkFlagRequired("name")

	setRoutingCmd.Flags().StringVar(&teamName, "name", "", "team name")
	setRoutingCmd.Flags().StringVar(&teamGroupID, "group-id", "", "chat group identifier")
	setRoutingCmd.Flags().StringArrayVar(&routeTopics, "topic", nil, "topic as name=id (repeatable)")
	setRoutingCmd.Flags().BoolVar(&routeReplace, "replace", false, "replace the topic map instead of merging")
	_ = setRoutingCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(createTeamCmd, listTeamsCmd, teamStatusCmd, closeTeamCmd, setRoutingCmd)
}

func runCreateTeam(ctx context.Context, a *app) (any, error) {
	return a.coord.CreateTeam(ctx, team.CreateRequest{
		Name:     teamName,
		Agents:   team.SplitAgents(teamAgents),
		Lead:     teamLead,
		GroupRef: teamGroupID,
		RepoPath: teamRepo,
	})
}

func runListTeams(ctx context.Context, a *app) (any, error) {
	return a.coord.ListTeams(ctx)
}

func runTeamStatus(ctx context.Context, a *app) (any, error) {
	recent := statusRecent
	if recent < 0 {
		recent = a.cfg.Team.RecentMessages
	}
	return a.coord.TeamStatus(ctx, teamName, recent)
}

func runCloseTeam(ctx context.Context, a *app) (any, error) {
	return a.coord.CloseTeam(ctx, teamName)
}

func runSetRouting(ctx context.Context, a *app) (any, error) {
	topics, err := parseTopics(routeTopics)
	if err != nil {
		return nil, err
	}
	return a.coord.SetRouting(ctx, teamName, team.RoutingRequest{
		GroupRef: teamGroupID,
		Topics:   topics,
		Replace:  routeReplace,
	})
}

// parseTopics parses name=id pairs.
func parseTopics(pairs []string) (map[string]int, error) {
	topics := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, errors.NewValidationError("topic", pair, "expected name=id")
		}
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, errors.NewValidationError("topic", pair, "topic id must be an integer")
		}
		topics[strings.TrimSpace(name)] = id
	}
	return topics, nil
}
