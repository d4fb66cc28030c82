// Package cli provides the tasklex command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/tasklex/internal/config"
	"github.com/lehmann314159/tasklex/internal/logging"
	"github.com/lehmann314159/tasklex/internal/repository"
	"github.com/lehmann314159/tasklex/internal/services"
)

// Version information (set at build time via ldflags).
var (
	Version = "dev"
	Commit  = "unknown"
)

// app carries what the commands share once flags and config are resolved.
type app struct {
	configFile string
	cfg        config.Config
	logger     *slog.Logger

	in  io.Reader
	out io.Writer

	tasks      *services.TaskService
	vocabStore *repository.VocabularyStore
	vocab      *services.VocabularyService
}

// NewRootCommand builds the command tree reading from in and writing to out.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out}

	root := &cobra.Command{
		Use:   "tasklex",
		Short: "Task tracking and vocabulary drills backed by SQLite",
		Long: `tasklex keeps a prioritized task list and an english/russian vocabulary
with a quiz mode that records every answer.

Examples:
  tasklex task add "write report" --priority 4
  tasklex task list --status Pending --order desc
  tasklex vocab add cat кот
  tasklex vocab quiz --direction ru_en
  tasklex serve --addr :8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/tasklex/tasklex.yaml)")
	flags.String("tasks-db", "", "Path to the tasks database")
	flags.String("vocabulary-db", "", "Path to the vocabulary database")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.Bool("log-json", false, "Log in JSON format")

	root.AddCommand(
		newTaskCommand(a),
		newVocabCommand(a),
		newServeCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree against the process's standard streams.
func Execute(ctx context.Context, in io.Reader, out, errOut io.Writer) error {
	root := NewRootCommand(in, out)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, styleError.Render("Error: "+err.Error()))
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logging.Init(cfg.Logging())
	a.logger = logging.Logger()
	a.logger.Debug("config loaded", "tasks_db", cfg.TasksDB, "vocabulary_db", cfg.VocabularyDB)
	return nil
}

// taskService opens the task store on first use.
func (a *app) taskService(ctx context.Context) (*services.TaskService, error) {
	if a.tasks != nil {
		return a.tasks, nil
	}
	store, err := repository.NewTaskStore(ctx, a.cfg.TasksDB, a.logger)
	if err != nil {
		return nil, err
	}
	a.tasks = services.NewTaskService(store)
	return a.tasks, nil
}

// vocabularyService initializes the vocabulary store on first use.
func (a *app) vocabularyService(ctx context.Context) (*services.VocabularyService, error) {
	if a.vocab != nil {
		return a.vocab, nil
	}
	store := repository.NewVocabularyStore(a.cfg.VocabularyDB, a.logger)
	if !store.InitStore(ctx) {
		return nil, fmt.Errorf("vocabulary store at %s is not available", a.cfg.VocabularyDB)
	}
	a.vocabStore = store
	a.vocab = services.NewVocabularyService(store, services.NewDictionaryService(a.cfg.Dictionary.BaseURL))
	return a.vocab, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tasklex %s (%s)\n", Version, Commit)
		},
	}
}
