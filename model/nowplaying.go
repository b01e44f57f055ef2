package model

// Source values reported in NowPlaying.Source.
const (
	SourceLocal   = "local"
	SourceRemote  = "remote"
	SourceUnknown = "unknown"
)

// NowPlaying is the metadata shown to polling clients. Nil fields encode as
// JSON null. Values are treated as immutable once published.
type NowPlaying struct {
	Title  *string `json:"title"`
	Artist *string `json:"artist"`
	Album  *string `json:"album"`
	Image  *string `json:"image"`
	Source *string `json:"source"`
}

// TrackInfo is the display metadata returned by the metadata collaborator.
type TrackInfo struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Image  string `json:"image"`
}

// NowPlayingFromLocal describes a catalog file: its filename and nothing else.
func NowPlayingFromLocal(filename string) NowPlaying {
	return NowPlaying{
		Title:  optional(filename),
		Source: optional(SourceLocal),
	}
}

// NowPlayingFromRemote describes a recommended track. info may be nil when the
// lookup failed or was skipped, in which case only title and artist are known.
func NowPlayingFromRemote(title, artist string, info *TrackInfo) NowPlaying {
	np := NowPlaying{
		Title:  optional(title),
		Artist: optional(artist),
		Source: optional(SourceRemote),
	}
	if info == nil {
		return np
	}
	if info.Title != "" {
		np.Title = optional(info.Title)
	}
	if info.Artist != "" {
		np.Artist = optional(info.Artist)
	}
	np.Album = optional(info.Album)
	np.Image = optional(info.Image)
	return np
}

// Value dereferences a field for display, returning "" for null.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
