package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/tasklex/internal/errors"
	"github.com/lehmann314159/tasklex/internal/models"
	"github.com/lehmann314159/tasklex/internal/quiz"
	"github.com/lehmann314159/tasklex/internal/services"
)

func newVocabCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vocab",
		Aliases: []string{"v", "words"},
		Short:   "Manage the vocabulary and run quizzes",
	}
	cmd.AddCommand(
		newVocabInitCommand(a),
		newVocabAddCommand(a),
		newVocabListCommand(a),
		newVocabDeleteCommand(a),
		newVocabStatsCommand(a),
		newVocabProblemsCommand(a),
		newVocabQuizCommand(a),
		newVocabImportCommand(a),
		newVocabExportCommand(a),
		newVocabDefineCommand(a),
	)
	return cmd
}

// fileFormat picks csv or xlsx from an explicit value or the file extension.
func fileFormat(explicit, path string) (string, error) {
	format := strings.ToLower(explicit)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case "csv", "xlsx":
		return format, nil
	default:
		return "", errors.NewValidationError("format", format, "must be csv or xlsx")
	}
}

func newVocabInitCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the vocabulary tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.vocabularyService(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, styleSuccess.Render("Vocabulary store ready at "+a.vocabStore.Path()))
			return nil
		},
	}
}

func newVocabAddCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "add <english> <russian>",
		Short:   "Add a word pair",
		Example: `  tasklex vocab add house дом`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.vocabularyService(cmd.Context())
			if err != nil {
				return err
			}
			word, err := svc.Add(cmd.Context(), &models.CreateWordRequest{
				EnglishWord:        args[0],
				RussianTranslation: args[1],
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, styleSuccess.Render(fmt.Sprintf("Added %s = %s", word.EnglishWord, word.RussianTranslation)))
			return nil
		},
	}
}

func newVocabListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every word pair",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.vocabularyService(cmd.Context())
			if err != nil {
				return err
			}
			words, err := svc.Words(cmd.Context())
			if err != nil {
				return err
			}
			printWords(a.out, words)
			return nil
		},
	}
}

func newVocabDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <english>",
		Aliases: []string{"rm"},
		Short:   "Delete a word and its answer history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.vocabularyService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.out, styleSuccess.Render("Deleted "+models.NormalizeWord(args[0])))
			return nil
		},
	}
}

func newVocabStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show answer accuracy for every word",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.vocabularyService(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			printStats(a.out, stats)
			return nil
		},
	}
}

func newVocabProblemsCommand(a *app) *cobra.Command {
	var limit, minAttempts int

	cmd := &cobra.Command{
		Use:   "problems",
		Short: "Show the words answered worst",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.vocabularyService(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := svc.Problems(cmd.Context(), limit, minAttempts)
			if err != nil {
				return err
			}
			printStats(a.out, stats)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of words")
	cmd.Flags().IntVar(&minAttempts, "min-attempts", 1, "Only words answered at least this many times")
	return cmd
}

func newVocabQuizCommand(a *app) *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Run an interactive translation quiz",
		Long: `Ask translations of random words until the stop word is typed:
"exit" for en_ru and "стоп" for ru_en. Every answer is recorded.`,
		Example: `  tasklex vocab quiz
  tasklex vocab quiz --direction ru_en`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := models.ParseTestType(direction)
			if err != nil {
				return err
			}
			if _, err := a.vocabularyService(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(a.out, styleMuted.Render(fmt.Sprintf("Type %q to stop.", quiz.Sentinel(dir))))
			session := quiz.NewSession(a.vocabStore, dir, a.in, a.out, quiz.WithLogger(a.logger))
			_, err = session.Run(cmd.Context())
			return err
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", string(models.EnToRu), "Quiz direction: en_ru or ru_en")
	return cmd
}

func newVocabImportCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import word pairs from a csv or xlsx file",
		Long: `Import word pairs. CSV files need an english and a russian header column;
spreadsheets use columns A and B of the first sheet below a header row.
Rows that are blank, duplicated or invalid are skipped and reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			kind, err := fileFormat(format, path)
			if err != nil {
				return err
			}
			svc, err := a.vocabularyService(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			var result *services.ImportResult
			if kind == "xlsx" {
				result, err = svc.ImportXLSX(cmd.Context(), f)
			} else {
				result, err = svc.ImportCSV(cmd.Context(), f)
			}
			if err != nil {
				return err
			}
			printImportResult(a.out, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "File format: csv or xlsx (default from extension)")
	return cmd
}

func newVocabExportCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export every word pair to a csv or xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			path := args[0]
			kind, err := fileFormat(format, path)
			if err != nil {
				return err
			}
			svc, err := a.vocabularyService(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			defer func() {
				if cerr := f.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			if kind == "xlsx" {
				err = svc.ExportXLSX(cmd.Context(), f)
			} else {
				err = svc.ExportCSV(cmd.Context(), f)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, styleSuccess.Render("Exported to "+path))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "File format: csv or xlsx (default from extension)")
	return cmd
}

func newVocabDefineCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "define <english>",
		Short: "Look up a stored word in the online dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.vocabularyService(cmd.Context())
			if err != nil {
				return err
			}
			defs, err := svc.Define(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDefinitions(a, defs)
			return nil
		},
	}
}

func printDefinitions(a *app, defs *models.Definitions) {
	title := fmt.Sprintf("%s = %s", defs.EnglishWord, defs.RussianTranslation)
	if defs.Phonetic != "" {
		title += "  " + defs.Phonetic
	}
	fmt.Fprintln(a.out, styleHeader.Render(title))

	for _, m := range defs.Meanings {
		fmt.Fprintln(a.out, styleMuted.Render(m.PartOfSpeech))
		for i, d := range m.Definitions {
			fmt.Fprintf(a.out, "  %d. %s\n", i+1, d.Definition)
			if d.Example != "" {
				fmt.Fprintln(a.out, styleMuted.Render("     \""+d.Example+"\""))
			}
		}
	}
}
