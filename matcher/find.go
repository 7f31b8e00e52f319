package matcher

import "github.com/csmith/backscrobble/model"

// Find searches for the track best identified by the selector.
// Returns the index of the best match, or -1 if no match is found.
// Ties go to the earliest track.
func Find(tracks []model.Track, selector string) int {
	bestIndex := -1
	bestScore := NoMatch

	for i := range tracks {
		score := Match(selector, tracks[i])
		if score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	return bestIndex
}
