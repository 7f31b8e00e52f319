package timeline

import "github.com/csmith/backscrobble/model"

// Group is a run of tracks sharing one artist and album
type Group struct {
	Artist string
	Album  string
	Tracks []model.Track
}

// Len returns the number of tracks in the group
func (g Group) Len() int {
	return len(g.Tracks)
}

// Submittable reports whether the group has a real artist and album
func (g Group) Submittable() bool {
	return g.Artist != "" && g.Album != "" &&
		g.Artist != model.UnknownArtist && g.Album != model.UnknownAlbum
}

type groupKey struct {
	artist string
	album  string
}

// GroupByContext splits files into per (artist, album) groups, in the order
// each pair is first seen. Groups lacking an artist or album are returned
// separately in skipped.
func GroupByContext(files []model.FileTrack) (groups, skipped []Group) {
	var all []Group
	index := make(map[groupKey]int)

	for _, f := range files {
		key := groupKey{artist: f.Artist, album: f.Album}
		i, ok := index[key]
		if !ok {
			i = len(all)
			index[key] = i
			all = append(all, Group{Artist: f.Artist, Album: f.Album})
		}
		all[i].Tracks = append(all[i].Tracks, f.Track)
	}

	for _, g := range all {
		if g.Submittable() {
			groups = append(groups, g)
		} else {
			skipped = append(skipped, g)
		}
	}

	return groups, skipped
}
