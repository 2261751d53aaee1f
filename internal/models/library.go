// Package models defines the in-memory shape of a media library.
package models

import (
	"maps"
	"slices"
	"strconv"
	"time"
)

// Library is the root dictionary of a library file.
type Library struct {
	ApplicationVersion  string
	Date                time.Time
	Features            int64
	LibraryPersistentID string
	MajorVersion        int64
	MinorVersion        int64
	MusicFolder         string
	ShowContentRatings  bool
	Playlists           []Playlist
	Tracks              map[string]Track
	// Extra keeps top-level keys the schema does not know about. It is only
	// populated when a library is read without validation.
	Extra map[string]any

	// absent holds known keys the source dictionary did not contain. Dict
	// leaves them out.
	absent map[string]struct{}
}

// Top-level keys of a library dictionary.
const (
	KeyApplicationVersion  = "Application Version"
	KeyDate                = "Date"
	KeyFeatures            = "Features"
	KeyLibraryPersistentID = "Library Persistent ID"
	KeyMajorVersion        = "Major Version"
	KeyMinorVersion        = "Minor Version"
	KeyMusicFolder         = "Music Folder"
	KeyShowContentRatings  = "Show Content Ratings"
	KeyPlaylists           = "Playlists"
	KeyTracks              = "Tracks"
)

var libraryKeys = []string{
	KeyApplicationVersion, KeyDate, KeyFeatures, KeyLibraryPersistentID,
	KeyMajorVersion, KeyMinorVersion, KeyMusicFolder, KeyShowContentRatings,
	KeyPlaylists, KeyTracks,
}

// TrackKeys returns the keys of Tracks in a stable order: numeric keys first in
// numeric order, then any other keys lexically.
func (l *Library) TrackKeys() []string {
	keys := slices.Collect(maps.Keys(l.Tracks))
	slices.SortFunc(keys, compareTrackKeys)
	return keys
}

func compareTrackKeys(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// ShallowCopy returns a new Library sharing playlists and metadata with l but
// owning a fresh, empty Tracks map.
func (l *Library) ShallowCopy() *Library {
	out := *l
	out.Tracks = make(map[string]Track, len(l.Tracks))
	return &out
}

// Dict converts the library back into the generic dictionary form the codec
// builds. Known keys missing from the dictionary the library was read from
// stay missing.
func (l *Library) Dict() map[string]any {
	dict := make(map[string]any, 10+len(l.Extra))
	for k, v := range l.Extra {
		dict[k] = v
	}
	dict[KeyApplicationVersion] = l.ApplicationVersion
	dict[KeyDate] = l.Date
	dict[KeyFeatures] = l.Features
	dict[KeyLibraryPersistentID] = l.LibraryPersistentID
	dict[KeyMajorVersion] = l.MajorVersion
	dict[KeyMinorVersion] = l.MinorVersion
	dict[KeyMusicFolder] = l.MusicFolder
	dict[KeyShowContentRatings] = l.ShowContentRatings

	playlists := make([]any, len(l.Playlists))
	for i, p := range l.Playlists {
		playlists[i] = map[string]any(p)
	}
	dict[KeyPlaylists] = playlists

	tracks := make(map[string]any, len(l.Tracks))
	for k, t := range l.Tracks {
		tracks[k] = map[string]any(t)
	}
	dict[KeyTracks] = tracks

	for k := range l.absent {
		delete(dict, k)
	}
	return dict
}

// FromDict builds a Library from a generic dictionary without verifying it.
// Values of the wrong kind become zero values; unknown keys go to Extra.
func FromDict(dict map[string]any) *Library {
	lib := &Library{
		ApplicationVersion:  asString(dict[KeyApplicationVersion]),
		LibraryPersistentID: asString(dict[KeyLibraryPersistentID]),
		MusicFolder:         asString(dict[KeyMusicFolder]),
		Features:            asInt(dict[KeyFeatures]),
		MajorVersion:        asInt(dict[KeyMajorVersion]),
		MinorVersion:        asInt(dict[KeyMinorVersion]),
		Tracks:              map[string]Track{},
	}
	lib.Date, _ = dict[KeyDate].(time.Time)
	lib.ShowContentRatings, _ = dict[KeyShowContentRatings].(bool)

	if raw, ok := dict[KeyPlaylists].([]any); ok {
		lib.Playlists = make([]Playlist, 0, len(raw))
		for _, p := range raw {
			if m, ok := p.(map[string]any); ok {
				lib.Playlists = append(lib.Playlists, Playlist(m))
			}
		}
	} else {
		lib.Playlists = []Playlist{}
	}

	if raw, ok := dict[KeyTracks].(map[string]any); ok {
		for k, t := range raw {
			if m, ok := t.(map[string]any); ok {
				lib.Tracks[k] = Track(m)
			}
		}
	}

	for _, k := range libraryKeys {
		if _, ok := dict[k]; !ok {
			if lib.absent == nil {
				lib.absent = map[string]struct{}{}
			}
			lib.absent[k] = struct{}{}
		}
	}

	for k, v := range dict {
		if !knownLibraryKey(k) {
			if lib.Extra == nil {
				lib.Extra = map[string]any{}
			}
			lib.Extra[k] = v
		}
	}
	return lib
}

func knownLibraryKey(k string) bool {
	return slices.Contains(libraryKeys, k)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asInt accepts every numeric representation a plist decoder may produce.
func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case uint64:
		return int64(n)
	case int:
		return int64(n)
	}
	f, _ := AsNumber(v)
	return int64(f)
}

// AsNumber reports the numeric value of v and whether v is a number at all.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
