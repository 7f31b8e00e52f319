package matcher

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/csmith/backscrobble/model"
)

// Score represents how well a selector identifies a track
type Score int

const (
	NoMatch    Score = 0
	FuzzyTitle Score = 1
	ExactTitle Score = 2
	Position   Score = 3
)

const maxLevenshteinDistance = 3

// Match compares a user supplied selector against a track
func Match(selector string, track model.Track) Score {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return NoMatch
	}

	if track.Position != "" && strings.EqualFold(selector, strings.TrimSpace(track.Position)) {
		return Position
	}

	if track.Title == "" {
		return NoMatch
	}

	if strings.EqualFold(selector, strings.TrimSpace(track.Title)) {
		return ExactTitle
	}

	a := normalizeForMatching(selector)
	b := normalizeForMatching(track.Title)
	if a == "" || b == "" {
		return NoMatch
	}
	if a == b || levenshtein.ComputeDistance(a, b) <= allowedDistance(b) {
		return FuzzyTitle
	}

	return NoMatch
}

// allowedDistance scales the tolerated edit distance with the title length so
// that short titles like "One" and "Two" don't match each other
func allowedDistance(title string) int {
	return min(maxLevenshteinDistance, len([]rune(title))/4)
}

func normalizeForMatching(s string) string {
	s = strings.ToLower(s)

	// Remove anything in parentheses
	for {
		start := strings.Index(s, "(")
		if start == -1 {
			break
		}
		end := strings.Index(s[start:], ")")
		if end == -1 {
			break
		}
		s = s[:start] + s[start+end+1:]
	}

	// Remove anything after feat/ft/featuring
	for _, sep := range []string{" feat.", " feat ", " ft.", " ft ", " featuring "} {
		if idx := strings.Index(s, sep); idx != -1 {
			s = s[:idx]
		}
	}

	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimPrefix(s, "the ")

	return s
}
