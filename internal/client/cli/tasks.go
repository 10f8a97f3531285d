package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/spf13/cobra"
)

func (a *App) syncTasks(ctx context.Context) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}
	return a.waitSynced(ctx, a.tasks.Changes(), a.tasks.Synced, a.tasks.Err)
}

func (a *App) tasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "Show the tasks, earliest due date first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.syncTasks(cmd.Context()); err != nil {
				return err
			}

			tasks := a.tasks.Tasks()
			if len(tasks) == 0 {
				a.printf("No tasks.\n")
				return nil
			}
			for _, t := range tasks {
				a.printTask(t)
			}
			return nil
		},
	}
}

func parseDueDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: due date must look like 2024-06-30", common.ErrValidation)
	}
	return d, nil
}

func (a *App) addTaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-task <YYYY-MM-DD> <title...>",
		Short: "Add a task (administrators)",
		Args:  minArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			due, err := parseDueDate(args[0])
			if err != nil {
				return err
			}

			t, err := a.tasks.AddTask(cmd.Context(), joinArgs(args[1:]), due)
			if err != nil {
				return err
			}
			a.printf("Added task %s, due %s\n", t.ID, t.DueDate.Format(dateLayout))
			return nil
		},
	}
}

func (a *App) deleteTaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-task <task-id>",
		Short: "Delete a task and everyone's completion flags (administrators)",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tasks.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("Deleted task %s\n", args[0])
			return nil
		},
	}
}

func (a *App) completionCmd(use string, completed bool) *cobra.Command {
	short := "Mark a task as done"
	if !completed {
		short = "Mark a task as not done"
	}
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tasks.ToggleCompletion(cmd.Context(), args[0], completed); err != nil {
				return err
			}
			a.printf("Task %s marked %s\n", args[0], use)
			return nil
		},
	}
}
