package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/csmith/backscrobble/model"
	"github.com/csmith/backscrobble/timeline"
)

const (
	discogsBaseURL   = "https://api.discogs.com"
	discogsUserAgent = "backscrobble/0.1"
)

// ErrInvalidReleaseID is returned when a Discogs release ID isn't numeric
var ErrInvalidReleaseID = errors.New("incorrect release ID format")

// Discogs appends " (2)", " (3)" etc to artists sharing a name
var discogsDisambiguation = regexp.MustCompile(`\s+\(\d+\)$`)

// Discogs is a release source backed by the Discogs database
type Discogs struct {
	Token     string
	UserAgent string
	BaseURL   string

	// FallbackDuration replaces missing track durations, defaults to timeline.FallbackSeconds
	FallbackDuration int
}

type discogsRelease struct {
	Title     string          `json:"title"`
	Artists   []discogsArtist `json:"artists"`
	Tracklist []discogsTrack  `json:"tracklist"`
}

type discogsArtist struct {
	Name string `json:"name"`
}

type discogsTrack struct {
	Position string `json:"position"`
	Type     string `json:"type_"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

// ParseDiscogsID strips the "[r123]" decoration Discogs shows next to
// release IDs and checks what's left is a number
func ParseDiscogsID(raw string) (string, error) {
	id := strings.NewReplacer("r", "", "[", "", "]", "").Replace(strings.TrimSpace(raw))
	if id == "" {
		return "", ErrInvalidReleaseID
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return "", ErrInvalidReleaseID
		}
	}
	return id, nil
}

// Release fetches the artist, title and tracklist of a Discogs release
func (d *Discogs) Release(ctx context.Context, id string) (*model.Release, error) {
	id, err := ParseDiscogsID(id)
	if err != nil {
		return nil, err
	}

	slog.Debug("Retrieving release", "id", id, "source", "discogs")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL()+"/releases/"+url.PathEscape(id), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	userAgent := d.UserAgent
	if userAgent == "" {
		userAgent = discogsUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if d.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Discogs token=%s", d.Token))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Discogs API error: %s - %s", resp.Status, string(body))
	}

	var release discogsRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	result, err := d.convertRelease(release)
	if err != nil {
		return nil, err
	}

	slog.Debug("Retrieved release", "id", id, "artist", result.Artist, "title", result.Title, "tracks", len(result.Tracks), "source", "discogs")
	return result, nil
}

func (d *Discogs) baseURL() string {
	if d.BaseURL != "" {
		return strings.TrimSuffix(d.BaseURL, "/")
	}
	return discogsBaseURL
}

// convertRelease maps a Discogs release onto the model, dropping tracklist headings
func (d *Discogs) convertRelease(release discogsRelease) (*model.Release, error) {
	if len(release.Artists) == 0 || release.Title == "" {
		return nil, errors.New("release metadata is invalid: missing artist or title")
	}

	fallback := d.FallbackDuration
	if fallback <= 0 {
		fallback = timeline.FallbackSeconds
	}

	tracks := make([]model.Track, 0, len(release.Tracklist))
	for _, t := range release.Tracklist {
		if t.Type == "heading" {
			continue
		}
		tracks = append(tracks, model.Track{
			Position: t.Position,
			Title:    t.Title,
			Duration: timeline.ParseDurationOr(t.Duration, fallback),
		})
	}

	return &model.Release{
		Artist: discogsDisambiguation.ReplaceAllString(release.Artists[0].Name, ""),
		Title:  release.Title,
		Tracks: tracks,
	}, nil
}

var _ model.ReleaseSource = &Discogs{}
