package model

import "context"

// ReleaseSource provides release metadata by identifier
type ReleaseSource interface {
	Release(ctx context.Context, id string) (*Release, error)
}

// Sink accepts plays one track at a time
type Sink interface {
	Scrobble(ctx context.Context, s Scrobble) error
}

// TagReader extracts track metadata from a local audio file. It never fails;
// missing values are replaced with placeholders.
type TagReader interface {
	ReadTags(path string) FileTrack
}
