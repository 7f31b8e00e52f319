package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/csmith/backscrobble/model"
)

const (
	listenBrainzBaseURL  = "https://api.listenbrainz.org"
	listenBrainzClient   = "backscrobble"
	listenBrainzAttempts = 3
)

// Extra seconds to wait on top of the server's rate limit reset hint
var rateLimitPadding = 5

// ListenBrainz is a sink that submits listens to ListenBrainz
type ListenBrainz struct {
	Token   string
	BaseURL string
}

type listenBrainzSubmission struct {
	ListenType string               `json:"listen_type"`
	Payload    []listenBrainzListen `json:"payload"`
}

type listenBrainzListen struct {
	ListenedAt    int64                     `json:"listened_at"`
	TrackMetadata listenBrainzTrackMetadata `json:"track_metadata"`
}

type listenBrainzTrackMetadata struct {
	ArtistName     string                     `json:"artist_name"`
	TrackName      string                     `json:"track_name"`
	ReleaseName    string                     `json:"release_name,omitempty"`
	AdditionalInfo listenBrainzAdditionalInfo `json:"additional_info"`
}

type listenBrainzAdditionalInfo struct {
	Duration         int    `json:"duration,omitempty"`
	SubmissionClient string `json:"submission_client"`
}

// Scrobble submits a single backdated listen to ListenBrainz
func (lb *ListenBrainz) Scrobble(ctx context.Context, s model.Scrobble) error {
	jsonData, err := json.Marshal(listenBrainzSubmission{
		ListenType: "single",
		Payload: []listenBrainzListen{{
			ListenedAt: s.Timestamp.Unix(),
			TrackMetadata: listenBrainzTrackMetadata{
				ArtistName:  s.Artist,
				TrackName:   s.Title,
				ReleaseName: s.Album,
				AdditionalInfo: listenBrainzAdditionalInfo{
					Duration:         s.Duration,
					SubmissionClient: listenBrainzClient,
				},
			},
		}},
	})
	if err != nil {
		return err
	}

	slog.Debug("Submitting listen", "artist", s.Artist, "album", s.Album, "title", s.Title, "timestamp", s.Timestamp.Unix(), "destination", "listenbrainz")

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, lb.submitListen(ctx, jsonData)
	}, backoff.WithMaxTries(listenBrainzAttempts))

	var rateLimited *backoff.RetryAfterError
	if errors.As(err, &rateLimited) {
		return fmt.Errorf("ListenBrainz: max retries exceeded due to rate limiting")
	}
	return err
}

// submitListen submits a single request, asking to be retried on 429
func (lb *ListenBrainz) submitListen(ctx context.Context, jsonData []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lb.baseURL()+"/1/submit-listens", bytes.NewReader(jsonData))
	if err != nil {
		return backoff.Permanent(err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Token %s", lb.Token))
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return backoff.Permanent(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		wait := lb.getSleepSeconds(resp)
		slog.Warn("Rate limited (429), retrying", "sleep_seconds", wait, "destination", "listenbrainz")
		return backoff.RetryAfter(wait)
	}

	lb.handleRateLimit(resp)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return backoff.Permanent(fmt.Errorf("ListenBrainz API error: %s - %s", resp.Status, string(body)))
	}

	return nil
}

func (lb *ListenBrainz) baseURL() string {
	if lb.BaseURL != "" {
		return lb.BaseURL
	}
	return listenBrainzBaseURL
}

// getSleepSeconds calculates how long to back off from rate limit headers
func (lb *ListenBrainz) getSleepSeconds(resp *http.Response) int {
	resetInStr := resp.Header.Get("X-RateLimit-Reset-In")
	if resetInStr != "" {
		if resetIn, err := strconv.Atoi(resetInStr); err == nil {
			return resetIn + rateLimitPadding
		}
	}
	return 10
}

// handleRateLimit checks rate limit headers and sleeps if necessary
func (lb *ListenBrainz) handleRateLimit(resp *http.Response) {
	remainingStr := resp.Header.Get("X-RateLimit-Remaining")
	resetInStr := resp.Header.Get("X-RateLimit-Reset-In")
	limit := resp.Header.Get("X-RateLimit-Limit")

	if remainingStr == "" {
		return
	}

	remaining, err := strconv.Atoi(remainingStr)
	if err != nil {
		return
	}

	if remaining <= 1 {
		resetIn, err := strconv.Atoi(resetInStr)
		if err != nil {
			slog.Warn("Rate limit low but couldn't parse reset time", "remaining", remaining, "limit", limit, "destination", "listenbrainz")
			return
		}

		sleepDuration := time.Duration(resetIn+rateLimitPadding) * time.Second
		slog.Warn("Rate limit low, sleeping", "remaining", remaining, "limit", limit, "duration_seconds", sleepDuration.Seconds(), "destination", "listenbrainz")
		time.Sleep(sleepDuration)
	}
}

var _ model.Sink = &ListenBrainz{}
