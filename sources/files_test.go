package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/csmith/backscrobble/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.senan.xyz/taglib"
)

// writeTaggedMP3 writes roughly ten seconds of silent MPEG1 Layer III frames
// (128kbps, 44.1kHz, stereo) and tags them
func writeTaggedMP3(t *testing.T, path string, tags map[string][]string) {
	t.Helper()

	frame := make([]byte, 417)
	frame[0] = 0xff
	frame[1] = 0xfb
	frame[2] = 0x90
	frame[3] = 0x00

	var data []byte
	for range 400 {
		data = append(data, frame...)
	}
	require.NoError(t, os.WriteFile(path, data, 0o600))

	if tags != nil {
		require.NoError(t, taglib.WriteTags(path, tags, 0))
	}
}

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{path: "song.mp3", expected: true},
		{path: "/music/SONG.FLAC", expected: true},
		{path: "a.b.opus", expected: true},
		{path: "track.wav", expected: true},
		{path: "track.m4a", expected: true},
		{path: "track.ogg", expected: true},
		{path: "cover.jpg", expected: false},
		{path: "noextension", expected: false},
		{path: "mp3", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAudioFile(tt.path))
		})
	}
}

func TestFiles_ReadTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01 - track.mp3")
	writeTaggedMP3(t, path, map[string][]string{
		taglib.Artist: {"The Artist"},
		taglib.Album:  {"The Album"},
		taglib.Title:  {"The Title"},
	})

	track := Files{}.ReadTags(path)

	assert.Equal(t, path, track.Path)
	assert.Equal(t, "The Artist", track.Artist)
	assert.Equal(t, "The Album", track.Album)
	assert.Equal(t, "The Title", track.Title)
	assert.InDelta(t, 10, track.Duration, 1)
}

func TestFiles_ReadTags_UntaggedAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "untagged.mp3")
	writeTaggedMP3(t, path, nil)

	track := Files{}.ReadTags(path)

	assert.Equal(t, model.UnknownArtist, track.Artist)
	assert.Equal(t, model.UnknownAlbum, track.Album)
	assert.Equal(t, "untagged.mp3", track.Title)
	assert.Positive(t, track.Duration)
}

func TestFiles_ReadTags_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.mp3")

	track := Files{}.ReadTags(path)

	assert.Equal(t, path, track.Path)
	assert.Equal(t, model.UnknownArtist, track.Artist)
	assert.Equal(t, model.UnknownAlbum, track.Album)
	assert.Equal(t, "missing.mp3", track.Title)
	assert.Equal(t, 0, track.Duration)
}

func TestFiles_ReadTags_NotAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.flac")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a flac file"), 0o600))

	track := Files{}.ReadTags(path)

	assert.Equal(t, model.UnknownArtist, track.Artist)
	assert.Equal(t, model.UnknownAlbum, track.Album)
	assert.Equal(t, "garbage.flac", track.Title)
	assert.Equal(t, 0, track.Duration)
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp3", "a.flac", "cover.jpg", filepath.Join("disc2", "c.opus")} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
		require.NoError(t, os.WriteFile(path, nil, 0o600))
	}
	loose := filepath.Join(t.TempDir(), "loose.txt")

	paths, err := ExpandPaths([]string{loose, dir})
	require.NoError(t, err)

	assert.Equal(t, []string{
		loose,
		filepath.Join(dir, "a.flac"),
		filepath.Join(dir, "b.mp3"),
		filepath.Join(dir, "disc2", "c.opus"),
	}, paths)
}
