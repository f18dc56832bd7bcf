// Package ui renders the live status line shown while a subprocess runs.
package ui

import (
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// reserved leaves room on the line for the spinner, elapsed time and title.
const reserved = 20

// Status is an indeterminate spinner whose text follows the latest output line.
type Status struct {
	title string
	bar   *progressbar.ProgressBar
	width int
}

// NewStatus starts a spinner titled title on stderr. When stderr is not a terminal
// the spinner stays invisible so logs and CI output stay clean.
func NewStatus(title string) *Status {
	fd := int(os.Stderr.Fd())
	visible := term.IsTerminal(fd)
	width := 80
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = w
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("[cyan]"+title+"[reset]"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(visible),
	)
	return &Status{title: title, bar: bar, width: width}
}

// Start opens a status display and returns its line sink and close func,
// matching runner.StatusFunc.
func Start(title string) (func(string), func()) {
	s := NewStatus(title)
	return s.Update, s.Done
}

// Update shows line as the current status. It has the runner.LineFunc signature.
func (s *Status) Update(line string) {
	s.bar.Describe("[cyan]" + s.title + "[reset] " + Truncate(line, s.width-len(s.title)-reserved))
	_ = s.bar.Add(1)
}

// Done stops the spinner and clears its line.
func (s *Status) Done() {
	_ = s.bar.Finish()
}

// Truncate shortens s to at most n runes, marking the cut with "…".
func Truncate(s string, n int) string {
	// Color codes in the line would be interpreted by the bar
	s = strings.NewReplacer("[", "(", "]", ")").Replace(s)
	r := []rune(s)
	if n <= 1 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
