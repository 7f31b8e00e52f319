package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/csmith/backscrobble/config"
	"github.com/csmith/backscrobble/matcher"
	"github.com/csmith/backscrobble/model"
	"github.com/csmith/backscrobble/scrobbler"
	"github.com/csmith/backscrobble/sources"
	"github.com/csmith/envflag/v2"
	"github.com/csmith/slogflags"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitPartial = 2
)

var (
	configPath = flag.String("config", "", "Path to the config file. If empty, searches the XDG config dirs then the working directory")

	release      = flag.String("release", "", "ID of the release to scrobble, e.g. 123456 or [r123456] for Discogs")
	source       = flag.String("source", "discogs", "Where to fetch the release from: discogs or subsonic")
	tracks       = flag.String("tracks", "", "Comma-separated track positions or titles to scrobble. If empty, scrobbles the whole release")
	end          = flag.String("end", "", "When the last track started playing, as '2006-01-02 15:04:05' local time or RFC 3339. If empty, uses now")
	destinations = flag.String("destinations", "lastfm", "Comma-separated list of destinations to scrobble to")
	dryRun       = flag.Bool("dry-run", false, "Don't actually scrobble anything, just print what would be sent")

	availableSources      map[string]model.ReleaseSource
	availableDestinations map[string]model.Sink
)

func main() {
	envflag.Parse()
	_ = slogflags.Logger(slogflags.WithSetDefault(true))

	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	path, err := config.Path(*configPath)
	if err != nil {
		slog.Error("Failed to find config file", "error", err)
		return exitFailure
	}

	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("Failed to load config", "path", path, "error", err)
		return exitFailure
	}

	initialise(cfg)

	endTime, err := parseEnd(*end)
	if err != nil {
		slog.Error("Failed to parse end time", "end", *end, "error", err)
		return exitFailure
	}

	dests, err := selectedDestinations()
	if err != nil {
		slog.Error("Failed to get destinations", "error", err)
		return exitFailure
	}

	s := &scrobbler.Scrobbler{
		Tags:             sources.Files{},
		Destinations:     dests,
		FallbackDuration: cfg.Scrobble.FallbackDuration,
		DryRun:           *dryRun,
	}

	if err := checkInputs(*release, flag.Args()); err != nil {
		slog.Error("Nothing to scrobble", "error", err)
		return exitFailure
	}

	var summary scrobbler.Summary
	if *release != "" {
		if s.Source, err = selectedSource(); err != nil {
			slog.Error("Failed to get source", "error", err)
			return exitFailure
		}
		summary, err = s.Release(ctx, *release, matcher.ParseSelectors(*tracks), endTime)
	} else {
		var paths []string
		if paths, err = sources.ExpandPaths(flag.Args()); err != nil {
			slog.Error("Failed to find audio files", "error", err)
			return exitFailure
		}
		summary, err = s.Files(ctx, paths, endTime)
	}

	if errors.Is(err, scrobbler.ErrNothingSelected) {
		fmt.Println("No tracks selected to scrobble.")
		return exitOK
	} else if err != nil {
		slog.Error("Failed to scrobble", "error", err)
		fmt.Println(err)
		return exitFailure
	}

	fmt.Print(summary.String())
	if summary.Partial() {
		return exitPartial
	}
	return exitOK
}

// checkInputs requires exactly one of a release or a list of files
func checkInputs(release string, files []string) error {
	switch {
	case release != "" && len(files) > 0:
		return fmt.Errorf("-release can't be combined with files (got %d)", len(files))
	case release == "" && len(files) == 0:
		return fmt.Errorf("specify -release or one or more audio files")
	}
	return nil
}

func initialise(cfg *config.Config) {
	availableSources = map[string]model.ReleaseSource{
		"discogs": &sources.Discogs{
			Token:            cfg.APIKeys.DiscogsAppToken,
			FallbackDuration: cfg.Scrobble.FallbackDuration,
		},
	}

	if cfg.HasSubsonic() {
		availableSources["subsonic"] = &sources.Subsonic{
			BaseURL:          cfg.Subsonic.URL,
			Username:         cfg.Subsonic.Username,
			Password:         cfg.Subsonic.Password,
			ClientName:       "backscrobble",
			FallbackDuration: cfg.Scrobble.FallbackDuration,
		}
	}

	availableDestinations = map[string]model.Sink{
		"lastfm": &sources.Lastfm{
			APIKey:   cfg.APIKeys.LastfmAppKey,
			Secret:   cfg.APIKeys.LastfmAppSecret,
			Username: cfg.LastfmUser.Username,
			Password: cfg.LastfmUser.Password,
		},
	}

	if cfg.HasListenBrainz() {
		availableDestinations["listenbrainz"] = &sources.ListenBrainz{
			Token: cfg.ListenBrainz.Token,
		}
	}
}

func selectedSource() (model.ReleaseSource, error) {
	if *source == "" {
		return nil, fmt.Errorf("source must be specified")
	}

	src, ok := availableSources[*source]
	if !ok {
		return nil, fmt.Errorf("source not configured or invalid: %s", *source)
	}

	return src, nil
}

func selectedDestinations() ([]scrobbler.Destination, error) {
	if *destinations == "" {
		return nil, fmt.Errorf("destinations must be specified")
	}

	var dests []scrobbler.Destination
	seen := make(map[string]bool)

	for _, destName := range strings.Split(*destinations, ",") {
		destName = strings.TrimSpace(destName)
		if destName == "" || seen[destName] {
			continue
		}
		seen[destName] = true

		dest, ok := availableDestinations[destName]
		if !ok {
			return nil, fmt.Errorf("destination not configured or invalid: %s", destName)
		}

		dests = append(dests, scrobbler.Destination{Name: destName, Sink: dest})
	}

	if len(dests) == 0 {
		return nil, fmt.Errorf("destinations must be specified")
	}

	return dests, nil
}

// parseEnd reads the end time flag. An empty value gives the zero time,
// which the scrobbler treats as now.
func parseEnd(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}

	if t, err := time.ParseInLocation(time.DateTime, value, time.Local); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected '%s' or RFC 3339: %w", time.DateTime, err)
	}
	return t, nil
}
