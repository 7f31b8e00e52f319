package timeline

import (
	"time"

	"github.com/csmith/backscrobble/model"
)

// Assign gives each track a start time by walking backwards from end: the
// last track starts at end, and each track moves the anchor back by its own
// duration before the earlier one is placed. A zero end means now.
func Assign(artist, album string, tracks []model.Track, end time.Time) []model.Scrobble {
	if end.IsZero() {
		end = time.Now()
	}
	anchor := end.Truncate(time.Second)

	scrobbles := make([]model.Scrobble, len(tracks))
	for i := len(tracks) - 1; i >= 0; i-- {
		scrobbles[i] = model.Scrobble{
			Artist:    artist,
			Album:     album,
			Title:     tracks[i].Title,
			Timestamp: anchor,
			Duration:  tracks[i].Duration,
		}
		anchor = anchor.Add(-time.Duration(tracks[i].Duration) * time.Second)
	}

	return scrobbles
}
