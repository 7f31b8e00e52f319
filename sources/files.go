package sources

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/csmith/backscrobble/model"
	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// AudioExtensions lists the file extensions treated as audio files
var AudioExtensions = []string{".mp3", ".flac", ".wav", ".ogg", ".m4a", ".opus"}

// IsAudioFile returns true if the path has a supported audio extension
func IsAudioFile(path string) bool {
	return slices.Contains(AudioExtensions, strings.ToLower(filepath.Ext(path)))
}

// Files reads track metadata from local audio files
type Files struct{}

// ReadTags reads artist, album, title and length from an audio file. Missing
// or unreadable values fall back to placeholders and a zero duration.
func (Files) ReadTags(path string) model.FileTrack {
	track := model.FileTrack{
		Track:  model.Track{Title: filepath.Base(path)},
		Path:   path,
		Artist: model.UnknownArtist,
		Album:  model.UnknownAlbum,
	}

	if _, err := os.Stat(path); err != nil {
		slog.Warn("Couldn't read file", "path", path, "error", err)
		return track
	}

	if err := readTextTags(path, &track); err != nil {
		slog.Debug("Couldn't read tags", "path", path, "error", err)
	}

	properties, err := taglib.ReadProperties(path)
	if err != nil {
		slog.Debug("Couldn't read audio properties", "path", path, "error", err)
		return track
	}
	track.Duration = int(properties.Length.Seconds())

	return track
}

func readTextTags(path string, track *model.FileTrack) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return err
	}

	if artist := strings.TrimSpace(m.Artist()); artist != "" {
		track.Artist = artist
	}
	if album := strings.TrimSpace(m.Album()); album != "" {
		track.Album = album
	}
	if title := strings.TrimSpace(m.Title()); title != "" {
		track.Title = title
	}
	return nil
}

// ExpandPaths replaces directories with the audio files beneath them, in
// lexical order, and keeps other paths as they are
func ExpandPaths(paths []string) ([]string, error) {
	var result []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			result = append(result, p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsAudioFile(path) {
				result = append(result, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

var _ model.TagReader = Files{}
