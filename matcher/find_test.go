package matcher

import (
	"testing"

	"github.com/csmith/backscrobble/model"
	"github.com/stretchr/testify/assert"
)

var tracklist = []model.Track{
	{Position: "A1", Title: "Intro", Duration: 60},
	{Position: "A2", Title: "Song Two", Duration: 200},
	{Position: "B1", Title: "Song Three", Duration: 180},
	{Position: "B2", Title: "Song Four (Remastered)", Duration: 240},
}

func TestFind(t *testing.T) {
	tests := []struct {
		name          string
		tracks        []model.Track
		selector      string
		expectedIndex int
	}{
		{
			name:          "find by position",
			tracks:        tracklist,
			selector:      "b1",
			expectedIndex: 2,
		},
		{
			name:          "find by exact title",
			tracks:        tracklist,
			selector:      "Song Three",
			expectedIndex: 2,
		},
		{
			name:          "find by fuzzy title",
			tracks:        tracklist,
			selector:      "Song Four",
			expectedIndex: 3,
		},
		{
			name:          "no match found",
			tracks:        tracklist,
			selector:      "Nonexistent",
			expectedIndex: -1,
		},
		{
			name:          "empty slice",
			tracks:        []model.Track{},
			selector:      "Intro",
			expectedIndex: -1,
		},
		{
			name: "prefers higher score match",
			tracks: []model.Track{
				{Position: "1", Title: "2"},
				{Position: "2", Title: "Two"},
			},
			selector:      "2",
			expectedIndex: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedIndex, Find(tt.tracks, tt.selector))
		})
	}
}
