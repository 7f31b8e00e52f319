// Package scrobbler ties release sources, tag reading and sinks together
// into the two backfill flows: a whole release, or a set of local files.
package scrobbler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/csmith/backscrobble/matcher"
	"github.com/csmith/backscrobble/model"
	"github.com/csmith/backscrobble/timeline"
	"github.com/dustin/go-humanize"
)

var (
	// ErrNothingSelected is returned when no track of a release was selected
	ErrNothingSelected = errors.New("no tracks selected to scrobble")
	// ErrNoFiles is returned when the files flow is given nothing to read
	ErrNoFiles = errors.New("no audio files selected")
)

// Destination is a named sink
type Destination struct {
	Name string
	Sink model.Sink
}

// Scrobbler runs backfills against a set of destinations
type Scrobbler struct {
	Source       model.ReleaseSource
	Tags         model.TagReader
	Destinations []Destination

	// FallbackDuration replaces unknown track durations, defaults to timeline.FallbackSeconds
	FallbackDuration int
	// DryRun logs plays instead of submitting them
	DryRun bool
}

// Release fetches a release, selects tracks from it and scrobbles them so the
// last selected track starts at end. A zero end means now.
func (s *Scrobbler) Release(ctx context.Context, id string, selectors []string, end time.Time) (Summary, error) {
	release, err := s.Source.Release(ctx, id)
	if err != nil {
		return Summary{}, fmt.Errorf("couldn't download metadata: %w", err)
	}

	slog.Info("Fetched release", "artist", release.Artist, "title", release.Title, "tracks", len(release.Tracks))

	selected, unmatched := matcher.Select(release.Tracks, selectors)
	for _, selector := range unmatched {
		slog.Warn("No track matches selector", "selector", selector)
	}
	if len(selected) == 0 {
		return Summary{}, ErrNothingSelected
	}

	for i := range selected {
		selected[i].Duration = timeline.ResolveDuration(selected[i].Duration, s.fallback())
	}

	var summary Summary
	scrobbles := timeline.Assign(release.Artist, release.Title, selected, end)
	s.submit(ctx, scrobbles, &summary)
	return summary, nil
}

// Files reads the tags of each file, groups them by artist and album and
// scrobbles every group on its own timeline ending at end. Groups without a
// known artist and album are skipped. A zero end means now.
func (s *Scrobbler) Files(ctx context.Context, paths []string, end time.Time) (Summary, error) {
	if len(paths) == 0 {
		return Summary{}, ErrNoFiles
	}
	if end.IsZero() {
		end = time.Now()
	}

	files := make([]model.FileTrack, 0, len(paths))
	for i, path := range paths {
		f := s.Tags.ReadTags(path)
		f.Position = strconv.Itoa(i + 1)
		f.Duration = timeline.ResolveDuration(f.Duration, s.fallback())
		slog.Debug("Read tags", "path", path, "artist", f.Artist, "album", f.Album, "title", f.Title, "duration", timeline.FormatDuration(f.Duration))
		files = append(files, f)
	}

	groups, skipped := timeline.GroupByContext(files)

	var summary Summary
	for _, g := range skipped {
		slog.Warn("Skipping tracks without artist or album", "artist", g.Artist, "album", g.Album, "count", g.Len())
		summary.Skipped += g.Len()
		summary.addError(fmt.Sprintf("Skipped %d tracks (Unknown Artist/Album)", g.Len()))
	}

	for _, g := range groups {
		slog.Info("Scrobbling group", "artist", g.Artist, "album", g.Album, "tracks", g.Len())
		s.submit(ctx, timeline.Assign(g.Artist, g.Album, g.Tracks, end), &summary)
	}

	return summary, nil
}

// submit sends one batch to every destination
func (s *Scrobbler) submit(ctx context.Context, scrobbles []model.Scrobble, summary *Summary) {
	if s.DryRun {
		for _, sc := range scrobbles {
			slog.Info("Would scrobble", "artist", sc.Artist, "album", sc.Album, "title", sc.Title, "timestamp", sc.Timestamp.Format(time.DateTime), "when", humanize.Time(sc.Timestamp))
		}
		summary.Succeeded += len(scrobbles)
		return
	}

	for _, d := range s.Destinations {
		summary.add(SubmitBatch(ctx, d.Name, d.Sink, scrobbles))
	}
}

func (s *Scrobbler) fallback() int {
	if s.FallbackDuration > 0 {
		return s.FallbackDuration
	}
	return timeline.FallbackSeconds
}

// SubmitBatch sends each scrobble to the sink in order. A failure is logged
// and counted and never stops the remaining scrobbles.
func SubmitBatch(ctx context.Context, name string, sink model.Sink, scrobbles []model.Scrobble) BatchResult {
	var result BatchResult
	for _, sc := range scrobbles {
		slog.Info("Scrobbling", "artist", sc.Artist, "title", sc.Title, "destination", name)
		if err := sink.Scrobble(ctx, sc); err != nil {
			slog.Warn("Couldn't scrobble track", "artist", sc.Artist, "title", sc.Title, "destination", name, "error", err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Failed for %s - %s on %s: %v", sc.Artist, sc.Title, name, err))
			continue
		}
		result.Succeeded++
	}
	return result
}
