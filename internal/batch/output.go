package batch

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// titleStyle for emphasized values
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for error indicators
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// warnStyle for rejected guideline updates and skips
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// headerBoxStyle for the batch header
	headerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	// bannerStyle for per-question banners
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("39")).
			Padding(0, 2)
)

// formatHeader renders the batch configuration box.
func formatHeader(w io.Writer, model string, samples int, resultsDir string) {
	content := fmt.Sprintf("%s %s\n%s %d\n%s %s",
		dimStyle.Render("Model:"), titleStyle.Render(model),
		dimStyle.Render("Questions:"), samples,
		dimStyle.Render("Results:"), resultsDir,
	)
	fmt.Fprintln(w, headerBoxStyle.Render(content))
}

// formatQuestionBanner renders the banner shown before each question.
func formatQuestionBanner(w io.Writer, index, total int, docID string) {
	fmt.Fprintln(w, bannerStyle.Render(fmt.Sprintf("Question %d/%d  %s", index+1, total, docID)))
}

// formatStage prints one stage's extracted answer.
func formatStage(w io.Writer, stage, answer string) {
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render(stage+":"), truncateLine(answer, 120))
}

func formatSkip(w io.Writer, path string) {
	fmt.Fprintf(w, "%s %s\n", warnStyle.Render("skip"), dimStyle.Render(path+" already exists"))
}

func formatError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", errorStyle.Render("error"), err)
}

func formatMemoryUpdate(w io.Writer, memory string) {
	fmt.Fprintf(w, "%s %s\n", successStyle.Render("memory"), truncateLine(memory, 120))
}

func formatMemoryRejected(w io.Writer, edits int) {
	fmt.Fprintf(w, "%s updated guideline changed %d sentences, keeping previous memory\n",
		warnStyle.Render("memory"), edits)
}

func truncateLine(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
