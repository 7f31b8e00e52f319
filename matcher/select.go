package matcher

import (
	"strings"

	"github.com/csmith/backscrobble/model"
)

// Select picks the tracks named by selectors, keeping tracklist order and
// dropping duplicates. Selectors that identify nothing are returned in
// unmatched. With no selectors every track is selected.
func Select(tracks []model.Track, selectors []string) (selected []model.Track, unmatched []string) {
	if len(selectors) == 0 {
		return append([]model.Track(nil), tracks...), nil
	}

	chosen := make(map[int]bool)
	for _, selector := range selectors {
		i := Find(tracks, selector)
		if i == -1 {
			unmatched = append(unmatched, selector)
			continue
		}
		chosen[i] = true
	}

	for i, track := range tracks {
		if chosen[i] {
			selected = append(selected, track)
		}
	}

	return selected, unmatched
}

// ParseSelectors splits a comma separated selector list, ignoring blanks
func ParseSelectors(list string) []string {
	var selectors []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}
