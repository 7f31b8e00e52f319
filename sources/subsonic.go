package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/csmith/backscrobble/model"
	"github.com/csmith/backscrobble/timeline"
	"github.com/supersonic-app/go-subsonic/subsonic"
)

// Subsonic is a release source that reads albums from a Subsonic server
type Subsonic struct {
	BaseURL    string
	Username   string
	Password   string
	ClientName string

	// FallbackDuration replaces missing track durations, defaults to timeline.FallbackSeconds
	FallbackDuration int

	mu     sync.Mutex
	client *subsonic.Client
}

// Release fetches an album and its songs from the Subsonic server
func (s *Subsonic) Release(_ context.Context, id string) (*model.Release, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	slog.Debug("Retrieving album", "id", id, "source", "subsonic")

	album, err := client.GetAlbum(id)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, fmt.Errorf("album not found: %s", id)
	}

	slog.Debug("Retrieved album", "id", id, "artist", album.Artist, "title", album.Name, "tracks", len(album.Song), "source", "subsonic")
	return s.albumToRelease(album), nil
}

// getClient lazily connects to the Subsonic server
func (s *Subsonic) getClient() (*subsonic.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	client := &subsonic.Client{
		Client:     http.DefaultClient,
		BaseUrl:    s.BaseURL,
		User:       s.Username,
		ClientName: s.ClientName,
	}

	if s.Password != "" {
		if err := client.Authenticate(s.Password); err != nil {
			return nil, err
		}
	}

	s.client = client
	return s.client, nil
}

// albumToRelease converts a Subsonic album to a Release
func (s *Subsonic) albumToRelease(album *subsonic.AlbumID3) *model.Release {
	fallback := s.FallbackDuration
	if fallback <= 0 {
		fallback = timeline.FallbackSeconds
	}

	multiDisc := false
	for _, song := range album.Song {
		if song.DiscNumber > 1 {
			multiDisc = true
			break
		}
	}

	tracks := make([]model.Track, 0, len(album.Song))
	for _, song := range album.Song {
		tracks = append(tracks, model.Track{
			Position: songPosition(song, multiDisc),
			Title:    song.Title,
			Duration: timeline.ResolveDuration(song.Duration, fallback),
		})
	}

	return &model.Release{
		Artist: album.Artist,
		Title:  album.Name,
		Tracks: tracks,
	}
}

func songPosition(song *subsonic.Child, multiDisc bool) string {
	if song.Track == 0 {
		return ""
	}
	if multiDisc {
		return fmt.Sprintf("%d-%d", max(song.DiscNumber, 1), song.Track)
	}
	return strconv.Itoa(song.Track)
}

var _ model.ReleaseSource = &Subsonic{}
