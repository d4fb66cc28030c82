package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/tasklex/internal/errors"
	"github.com/lehmann314159/tasklex/internal/models"
)

func newTaskCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "t"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(
		newTaskAddCommand(a),
		newTaskGetCommand(a),
		newTaskListCommand(a),
		newTaskUpdateCommand(a),
		newTaskDoneCommand(a),
		newTaskDeleteCommand(a),
		newTaskPurgeCommand(a),
	)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("id", s, "must be a positive integer")
	}
	return id, nil
}

func newTaskAddCommand(a *app) *cobra.Command {
	var (
		description string
		status      string
		priority    int
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Example: `  tasklex task add "renew passport"
  tasklex task add "ship release" -p 5 -d "tag and publish"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.taskService(cmd.Context())
			if err != nil {
				return err
			}

			req := &models.CreateTaskRequest{Title: args[0], Description: description}
			if status != "" {
				s, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				req.Status = s
			}
			if cmd.Flags().Changed("priority") {
				req.Priority = &priority
			}

			task, err := svc.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, styleSuccess.Render(fmt.Sprintf("Added task %d", *task.ID)))
			printTask(a.out, task)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Initial status: Pending, In Progress, Completed")
	cmd.Flags().IntVarP(&priority, "priority", "p", models.DefaultPriority, "Priority from 1 to 5")
	return cmd
}

func newTaskGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.taskService(cmd.Context())
			if err != nil {
				return err
			}
			task, err := svc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			printTask(a.out, task)
			return nil
		},
	}
}

func newTaskListCommand(a *app) *cobra.Command {
	var (
		status    string
		order     string
		title     string
		priority  int
		minP      int
		maxP      int
		completed bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List tasks, optionally filtered.

--title and --priority cannot be combined with other filters. A priority
range (--min/--max) may be sorted with --order but not filtered by status.`,
		Example: `  tasklex task list
  tasklex task list --status "In Progress" --order desc
  tasklex task list --min 3 --max 5
  tasklex task list --title report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := models.TaskFilter{
				TitleContains: title,
				Priority:      priority,
				MinPriority:   minP,
				MaxPriority:   maxP,
				CompletedOnly: completed,
			}
			if status != "" {
				s, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				filter.Status = s
			}
			if order != "" {
				o, err := models.ParseSortOrder(order)
				if err != nil {
					return err
				}
				filter.Order = o
			}

			svc, err := a.taskService(cmd.Context())
			if err != nil {
				return err
			}
			tasks, err := svc.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printTasks(a.out, tasks)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&status, "status", "s", "", "Only tasks with this status")
	f.StringVarP(&order, "order", "o", "", "Sort by priority: asc or desc")
	f.StringVarP(&title, "title", "t", "", "Only tasks whose title contains this keyword")
	f.IntVarP(&priority, "priority", "p", 0, "Only tasks with this priority")
	f.IntVar(&minP, "min", 0, "Lowest priority in range")
	f.IntVar(&maxP, "max", 0, "Highest priority in range")
	f.BoolVar(&completed, "completed", false, "Only completed tasks")
	return cmd
}

func newTaskUpdateCommand(a *app) *cobra.Command {
	var (
		title       string
		description string
		status      string
		priority    int
	)

	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Change a task's fields",
		Example: `  tasklex task update 3 --status "In Progress" --priority 4`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var req models.UpdateTaskRequest
			f := cmd.Flags()
			if f.Changed("title") {
				req.Title = &title
			}
			if f.Changed("description") {
				req.Description = &description
			}
			if f.Changed("status") {
				s, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				req.Status = &s
			}
			if f.Changed("priority") {
				req.Priority = &priority
			}
			if req == (models.UpdateTaskRequest{}) {
				return errors.New("nothing to update: pass at least one of --title, --description, --status, --priority")
			}

			svc, err := a.taskService(cmd.Context())
			if err != nil {
				return err
			}
			task, err := svc.Update(cmd.Context(), id, &req)
			if err != nil {
				return err
			}
			printTask(a.out, task)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "New priority")
	return cmd
}

func newTaskDoneCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.taskService(cmd.Context())
			if err != nil {
				return err
			}
			task, err := svc.Complete(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, styleSuccess.Render(fmt.Sprintf("Completed task %d: %s", *task.ID, task.Title)))
			return nil
		},
	}
}

func newTaskDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.taskService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(a.out, styleSuccess.Render(fmt.Sprintf("Deleted task %d", id)))
			return nil
		},
	}
}

func newTaskPurgeCommand(a *app) *cobra.Command {
	var completed, all bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete completed tasks, or every task",
		Example: `  tasklex task purge --completed
  tasklex task purge --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.taskService(cmd.Context())
			if err != nil {
				return err
			}
			n, err := svc.Purge(cmd.Context(), completed)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, styleSuccess.Render(fmt.Sprintf("Deleted %d task(s)", n)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "Delete completed tasks")
	cmd.Flags().BoolVar(&all, "all", false, "Delete every task")
	cmd.MarkFlagsMutuallyExclusive("completed", "all")
	cmd.MarkFlagsOneRequired("completed", "all")
	return cmd
}
