package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/clawteam/internal/taskboard"
)

var addTaskCmd = &cobra.Command{
	Use:   "add-task",
	Short: "Add a task to a team's board",
	Long: `Add a todo task with the next free id (T001, T002, ...).

Dependencies are stored as given and are not checked against the board.

Example:
  clawteam add-task --name alpha --title "Draft logo" --assign-to artist --depends-on T001,T002`,
	RunE: run(runAddTask),
}

var claimTaskCmd = &cobra.Command{
	Use:   "claim-task",
	Short: "Assign a task to an agent",
	Long:  `Assign a task to an agent. A todo task moves to in_progress; other statuses are kept.`,
	RunE:  run(runClaimTask),
}

var updateTaskCmd = &cobra.Command{
	Use:   "update-task",
	Short: "Change a task's status or notes",
	Long: `Change a task's status or notes. Valid statuses are todo, in_progress,
done, blocked and cancelled. Empty --notes keeps the current notes.`,
	RunE: run(runUpdateTask),
}

var listTasksCmd = &cobra.Command{
	Use:   "list-tasks",
	Short: "List a team's tasks with status counts",
	RunE:  run(runListTasks),
}

var (
	taskTitle     string
	taskAssignTo  string
	taskDependsOn string
	taskID        string
	taskAgent     string
	taskStatus    string
	taskNotes     string
	tasksReady    bool
)

func init() {
	addTaskCmd.Flags().StringVar(&teamName, "name", "", "team name")
	addTaskCmd.Flags().StringVar(&taskTitle, "title", "", "task title")
	addTaskCmd.Flags().StringVar(&taskAssignTo, "assign-to", "", "agent id (default unassigned)")
	addTaskCmd.Flags().StringVar(&taskDependsOn, "depends-on", "", "comma separated task ids")
	_ = addTaskCmd.MarkFlagRequired("name")
	_ = addTaskCmd.MarkFlagRequired("title")

	claimTaskCmd.Flags().StringVar(&teamName, "name", "", "team name")
	claimTaskCmd.Flags().StringVar(&taskID, "task-id", "", "task id")
	claimTaskCmd.Flags().StringVar(&taskAgent, "agent", "", "agent id")
	_ = claimTaskCmd.MarkFlagRequired("name")
	_ = claimTaskCmd.MarkFlagRequired("task-id")
	_ = claimTaskCmd.MarkFlagRequired("agent")

	updateTaskCmd.Flags().StringVar(&teamName, "name", "", "team name")
	updateTaskCmd.Flags().StringVar(&taskID, "task-id", "", "task id")
	updateTaskCmd.Flags().StringVar(&taskStatus, "status", "", "new status")
	updateTaskCmd.Flags().StringVar(&taskNotes, "notes", "", "replacement notes")
	_ = updateTaskCmd.MarkFlagRequired("name")
	_ = updateTaskCmd.MarkFlagRequired("task-id")

	listTasksCmd.Flags().StringVar(&teamName, "name", "", "team name")
	listTasksCmd.Flags().BoolVar(&tasksReady, "ready", false, "only todo tasks whose dependencies are done")
	_ = listTasksCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(addTaskCmd, claimTaskCmd, updateTaskCmd, listTasksCmd)
}

func runAddTask(ctx context.Context, a *app) (any, error) {
	return a.coord.AddTask(ctx, teamName, taskboard.AddRequest{
		Title:     taskTitle,
		AssignTo:  taskAssignTo,
		DependsOn: splitList(taskDependsOn),
	})
}

func runClaimTask(ctx context.Context, a *app) (any, error) {
	return a.coord.ClaimTask(ctx, teamName, taskID, taskAgent)
}

func runUpdateTask(ctx context.Context, a *app) (any, error) {
	return a.coord.UpdateTask(ctx, teamName, taskID, taskboard.UpdateRequest{
		Status: taskboard.Status(taskStatus),
		Notes:  taskNotes,
	})
}

func runListTasks(ctx context.Context, a *app) (any, error) {
	if tasksReady {
		return a.coord.ReadyTasks(ctx, teamName)
	}
	return a.coord.ListTasks(ctx, teamName)
}

// splitList splits a comma separated list, trimming entries and dropping
// blanks. Duplicates are kept.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
