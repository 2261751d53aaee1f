package models

import (
	"maps"
	"time"
)

// Track keys the migration pipeline reads directly.
const (
	TrackKeyLocation     = "Location"
	TrackKeyName         = "Name"
	TrackKeyPersistentID = "Persistent ID"
	TrackKeyTrackID      = "Track ID"
	TrackKeyTrackType    = "Track Type"
	TrackKeyDateAdded    = "Date Added"
)

// Track is one record of the library's Tracks dictionary. Records are kept in
// their generic dictionary form so that every field survives a migration.
type Track map[string]any

// Clone returns an independent copy of t.
func (t Track) Clone() Track {
	return maps.Clone(t)
}

// Location returns the encoded file location, if the track has one.
func (t Track) Location() (string, bool) {
	loc, ok := t[TrackKeyLocation].(string)
	return loc, ok && loc != ""
}

// WithLocation returns a copy of t whose Location is loc.
func (t Track) WithLocation(loc string) Track {
	out := t.Clone()
	out[TrackKeyLocation] = loc
	return out
}

func (t Track) Name() string {
	s, _ := t[TrackKeyName].(string)
	return s
}

func (t Track) PersistentID() string {
	s, _ := t[TrackKeyPersistentID].(string)
	return s
}

func (t Track) TrackType() string {
	s, _ := t[TrackKeyTrackType].(string)
	return s
}

func (t Track) TrackID() int64 {
	return asInt(t[TrackKeyTrackID])
}

func (t Track) DateAdded() time.Time {
	d, _ := t[TrackKeyDateAdded].(time.Time)
	return d
}
