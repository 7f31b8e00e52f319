package model

import "time"

// Placeholders used when a local file carries no usable artist or album tag
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// Track is a single entry of a tracklist
type Track struct {
	Position string
	Title    string
	Duration int // seconds
}

// Release is an album fetched from a metadata source
type Release struct {
	Artist string
	Title  string
	Tracks []Track
}

// FileTrack is a local audio file with the context read from its tags
type FileTrack struct {
	Track
	Path   string
	Artist string
	Album  string
}

// Scrobble is a single backdated play ready to be submitted
type Scrobble struct {
	Artist    string
	Album     string
	Title     string
	Timestamp time.Time
	Duration  int // seconds
}
