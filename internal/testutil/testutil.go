// Package testutil provides shared fixtures for library and migration tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/electrovir/itunes-library-migration-assistant/internal/codec"
	"github.com/electrovir/itunes-library-migration-assistant/internal/models"
)

// DummyDate has no sub-second part because library dates are stored in whole seconds.
var DummyDate = time.Date(2020, time.June, 15, 12, 30, 0, 0, time.UTC)

// DummyTrack returns a track carrying only the required fields plus loc.
func DummyTrack(id int64, loc string) models.Track {
	t := models.Track{
		"Date Added":    DummyDate,
		"Persistent ID": "0",
		"Track ID":      id,
		"Track Type":    "File",
		"Name":          "",
	}
	if loc != "" {
		t["Location"] = loc
	}
	return t
}

// DummyLibrary returns a minimal valid library with a single track "0"
// located at file:///sample/path.mp3.
func DummyLibrary() *models.Library {
	return &models.Library{
		ApplicationVersion:  "",
		LibraryPersistentID: "",
		MajorVersion:        0,
		MinorVersion:        0,
		MusicFolder:         "",
		ShowContentRatings:  false,
		Date:                DummyDate,
		Features:            0,
		Playlists:           []models.Playlist{},
		Tracks: map[string]models.Track{
			"0": DummyTrack(0, "file:///sample/path.mp3"),
		},
	}
}

// SampleLibrary returns a small but realistic library with two tracks and a
// playlist referencing them.
func SampleLibrary() *models.Library {
	lib := DummyLibrary()
	lib.ApplicationVersion = "12.9.5.5"
	lib.LibraryPersistentID = "6E2B1BB7A5F1C2D3"
	lib.MajorVersion = 1
	lib.MinorVersion = 1
	lib.MusicFolder = "file:///Users/me/Music/iTunes/iTunes%20Media/"
	lib.Features = 5
	lib.Tracks = map[string]models.Track{
		"101": {
			"Track ID":      int64(101),
			"Name":          "Jóga",
			"Artist":        "Björk",
			"Album":         "Homogenic",
			"Persistent ID": "A1B2C3D4E5F60718",
			"Track Type":    "File",
			"Date Added":    DummyDate,
			"Total Time":    int64(305000),
			"Location":      "file:///Users/me/Music/iTunes/iTunes%20Media/Music/Bjo%CC%88rk/Homogenic/02%20Jo%CC%81ga.mp3",
		},
		"102": {
			"Track ID":      int64(102),
			"Name":          "Semicolon; Song",
			"Persistent ID": "A1B2C3D4E5F60719",
			"Track Type":    "File",
			"Date Added":    DummyDate,
			"Location":      "file:///Users/me/Music/iTunes/iTunes%20Media/Music/Band/Album%20%231/Semicolon%3B%20Song.m4a",
		},
	}
	lib.Playlists = []models.Playlist{
		{
			"Name":                   "Library",
			"Master":                 true,
			"All Items":              true,
			"Visible":                false,
			"Playlist ID":            int64(1),
			"Playlist Persistent ID": "00000000000000AA",
			"Playlist Items": []any{
				map[string]any{"Track ID": int64(101)},
				map[string]any{"Track ID": int64(102)},
			},
		},
	}
	return lib
}

// LibraryText serializes lib the way a library file stores it.
func LibraryText(t *testing.T, lib *models.Library) string {
	t.Helper()
	text, err := codec.Build(lib.Dict())
	if err != nil {
		t.Fatalf("build library: %v", err)
	}
	return text
}

// WriteLibrary writes lib into dir under name and returns the full path.
func WriteLibrary(t *testing.T, dir, name string, lib *models.Library) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(LibraryText(t, lib)), 0o644); err != nil {
		t.Fatalf("write library: %v", err)
	}
	return path
}

// FakeFiles is an in-memory existence checker keyed by decoded path.
type FakeFiles map[string]bool

// Exists reports whether path was registered as present.
func (f FakeFiles) Exists(path string) (bool, error) {
	return f[path], nil
}
