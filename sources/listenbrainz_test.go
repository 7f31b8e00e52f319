package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/csmith/backscrobble/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withoutRateLimitPadding(t *testing.T) {
	old := rateLimitPadding
	rateLimitPadding = 0
	t.Cleanup(func() { rateLimitPadding = old })
}

var testScrobble = model.Scrobble{
	Artist:    "Artist",
	Album:     "Album",
	Title:     "Title",
	Timestamp: time.Unix(1_700_000_000, 0),
	Duration:  215,
}

func TestListenBrainz_Scrobble(t *testing.T) {
	submissions := make(chan listenBrainzSubmission, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/1/submit-listens", r.URL.Path)
		assert.Equal(t, "Token abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var submission listenBrainzSubmission
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&submission))
		submissions <- submission
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	lb := &ListenBrainz{Token: "abc", BaseURL: server.URL}
	require.NoError(t, lb.Scrobble(context.Background(), testScrobble))

	received := <-submissions

	assert.Equal(t, "single", received.ListenType)
	require.Len(t, received.Payload, 1)
	listen := received.Payload[0]
	assert.Equal(t, int64(1_700_000_000), listen.ListenedAt)
	assert.Equal(t, "Artist", listen.TrackMetadata.ArtistName)
	assert.Equal(t, "Title", listen.TrackMetadata.TrackName)
	assert.Equal(t, "Album", listen.TrackMetadata.ReleaseName)
	assert.Equal(t, 215, listen.TrackMetadata.AdditionalInfo.Duration)
	assert.Equal(t, "backscrobble", listen.TrackMetadata.AdditionalInfo.SubmissionClient)
}

func TestListenBrainz_Scrobble_RetriesWhenRateLimited(t *testing.T) {
	withoutRateLimitPadding(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("X-RateLimit-Reset-In", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	lb := &ListenBrainz{Token: "abc", BaseURL: server.URL}
	require.NoError(t, lb.Scrobble(context.Background(), testScrobble))
	assert.Equal(t, int32(2), calls.Load())
}

func TestListenBrainz_Scrobble_GivesUpWhenRateLimited(t *testing.T) {
	withoutRateLimitPadding(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("X-RateLimit-Reset-In", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	lb := &ListenBrainz{Token: "abc", BaseURL: server.URL}
	err := lb.Scrobble(context.Background(), testScrobble)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiting")
	assert.Equal(t, int32(listenBrainzAttempts), calls.Load())
}

func TestListenBrainz_Scrobble_DoesNotRetryOtherErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code": 401, "error": "Invalid authorization token."}`))
	}))
	defer server.Close()

	lb := &ListenBrainz{Token: "bad", BaseURL: server.URL}
	err := lb.Scrobble(context.Background(), testScrobble)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid authorization token.")
	assert.Equal(t, int32(1), calls.Load())
}
