package sources

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/csmith/backscrobble/model"
	"github.com/twoscott/gobble-fm/api"
	"github.com/twoscott/gobble-fm/lastfm"
	"github.com/twoscott/gobble-fm/session"
)

// Last.fm accepts scrobbles with older timestamps but silently ignores them
const lastfmMaxScrobbleAge = 14 * 24 * time.Hour

// Lastfm is a sink that submits scrobbles to Last.fm
type Lastfm struct {
	APIKey   string
	Secret   string
	Username string
	Password string

	// HTTPClient overrides the client used to reach the Last.fm API
	HTTPClient api.HTTPClient

	mu     sync.Mutex
	client *session.Client
}

// Scrobble submits a single backdated play to Last.fm
func (l *Lastfm) Scrobble(_ context.Context, s model.Scrobble) error {
	client, err := l.getClient()
	if err != nil {
		return err
	}

	if time.Since(s.Timestamp) > lastfmMaxScrobbleAge {
		slog.Warn("Scrobble is older than Last.fm accepts and will probably be ignored", "artist", s.Artist, "title", s.Title, "timestamp", s.Timestamp, "destination", "lastfm")
	}

	slog.Debug("Scrobbling track", "artist", s.Artist, "album", s.Album, "title", s.Title, "timestamp", s.Timestamp.Unix(), "destination", "lastfm")

	res, err := client.Track.Scrobble(lastfm.ScrobbleParams{
		Artist:   s.Artist,
		Track:    s.Title,
		Album:    s.Album,
		Time:     s.Timestamp,
		Duration: lastfm.Duration(time.Duration(s.Duration) * time.Second),
	})
	if err != nil {
		return err
	}

	if res.Ignored.Bool() {
		return fmt.Errorf("Last.fm ignored the scrobble: %s", res.Scrobble.Ignored.Message())
	}
	return nil
}

// getClient lazily connects to Last.fm
func (l *Lastfm) getClient() (*session.Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client != nil {
		return l.client, nil
	}

	client := session.NewClient(l.APIKey, l.Secret)
	if l.HTTPClient != nil {
		client.API.Client = l.HTTPClient
	}
	if err := client.Login(l.Username, l.Password); err != nil {
		return nil, err
	}

	l.client = client
	return l.client, nil
}

var _ model.Sink = &Lastfm{}
