package scrobbler

import (
	"fmt"
	"slices"
	"strings"
)

// BatchResult is the outcome of submitting one batch to one destination
type BatchResult struct {
	Succeeded int
	Failed    int
	Errors    []string
}

// Summary aggregates the outcome of a whole run
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
	Errors    []string
}

// Partial returns true if anything failed or was skipped
func (s Summary) Partial() bool {
	return s.Failed > 0 || s.Skipped > 0
}

func (s *Summary) add(r BatchResult) {
	s.Succeeded += r.Succeeded
	s.Failed += r.Failed
	for _, msg := range r.Errors {
		s.addError(msg)
	}
}

func (s *Summary) addError(msg string) {
	if !slices.Contains(s.Errors, msg) {
		s.Errors = append(s.Errors, msg)
	}
}

// String renders the summary shown to the user at the end of a run
func (s Summary) String() string {
	var b strings.Builder
	b.WriteString("Scrobbling process completed.\n\n")
	fmt.Fprintf(&b, "Successfully scrobbled: %d tracks\n", s.Succeeded)
	fmt.Fprintf(&b, "Failed/Skipped: %d tracks\n", s.Failed+s.Skipped)
	if len(s.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		b.WriteString(strings.Join(s.Errors, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
