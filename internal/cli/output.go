package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lehmann314159/tasklex/internal/models"
	"github.com/lehmann314159/tasklex/internal/services"
)

// Styles for CLI output.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Yellow
	colorError   = lipgloss.Color("#EF4444") // Red

	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	styleCell    = lipgloss.NewStyle().Padding(0, 1)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleError   = lipgloss.NewStyle().Foreground(colorError)
)

const noAccuracy = "—"

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleMuted).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		})
	fmt.Fprintln(w, t.Render())
}

func printTasks(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, styleMuted.Render("No tasks."))
		return
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		id := ""
		if t.ID != nil {
			id = strconv.FormatInt(*t.ID, 10)
		}
		rows = append(rows, []string{id, t.Title, string(t.Status), strconv.Itoa(t.Priority), t.Description})
	}
	renderTable(w, []string{"ID", "Title", "Status", "Priority", "Description"}, rows)
}

func printTask(w io.Writer, t *models.Task) {
	printTasks(w, []models.Task{*t})
}

func printWords(w io.Writer, words []models.Word) {
	if len(words) == 0 {
		fmt.Fprintln(w, styleMuted.Render("The dictionary is empty."))
		return
	}
	rows := make([][]string, 0, len(words))
	for _, word := range words {
		rows = append(rows, []string{strconv.FormatInt(word.ID, 10), word.EnglishWord, word.RussianTranslation})
	}
	renderTable(w, []string{"ID", "English", "Russian"}, rows)
}

func formatAccuracy(acc *float64) string {
	if acc == nil {
		return noAccuracy
	}
	return strconv.FormatFloat(*acc, 'f', 2, 64) + "%"
}

func printStats(w io.Writer, stats []models.WordStats) {
	if len(stats) == 0 {
		fmt.Fprintln(w, styleMuted.Render("No statistics yet."))
		return
	}
	rows := make([][]string, 0, len(stats))
	for i, s := range stats {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.EnglishWord,
			s.RussianTranslation,
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Correct),
			strconv.Itoa(s.Incorrect),
			formatAccuracy(s.Accuracy),
		})
	}
	renderTable(w, []string{"#", "English", "Russian", "Total", "Correct", "Wrong", "Accuracy"}, rows)
}

func printImportResult(w io.Writer, r *services.ImportResult) {
	fmt.Fprintln(w, styleSuccess.Render(fmt.Sprintf("Imported %d, skipped %d", r.Imported, r.Skipped)))
	for _, e := range r.Errors {
		fmt.Fprintln(w, styleWarning.Render("  "+e))
	}
}
