package models

// Playlist keys read by the pipeline.
const (
	PlaylistKeyName          = "Name"
	PlaylistKeyItems         = "Playlist Items"
	PlaylistKeyPlaylistID    = "Playlist ID"
	PlaylistKeySmartCriteria = "Smart Criteria"
)

// Playlist is one record of the library's Playlists array. Migration passes
// playlists through untouched.
type Playlist map[string]any

// PlaylistItem references a track by its Track ID. It does not own the track.
type PlaylistItem struct {
	TrackID int64
}

func (p Playlist) Name() string {
	s, _ := p[PlaylistKeyName].(string)
	return s
}

func (p Playlist) PlaylistID() int64 {
	return asInt(p[PlaylistKeyPlaylistID])
}

// Items returns the track references of the playlist in order.
func (p Playlist) Items() []PlaylistItem {
	raw, _ := p[PlaylistKeyItems].([]any)
	items := make([]PlaylistItem, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, PlaylistItem{TrackID: asInt(m[TrackKeyTrackID])})
	}
	return items
}

// SmartCriteria returns the opaque smart playlist blob, if any.
func (p Playlist) SmartCriteria() []byte {
	b, _ := p[PlaylistKeySmartCriteria].([]byte)
	return b
}
