package model

import (
	"path/filepath"
	"strings"
)

// TrackRef is one playlist entry. Path is set for entries taken from the
// local catalog; Title and Artist are set for recommended tracks. Whether an
// entry is actually playable is decided at play time (see Classify).
type TrackRef struct {
	Path   string `json:"path,omitempty"`
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
}

// LocalRef builds a catalog entry.
func LocalRef(path string) TrackRef {
	return TrackRef{Path: path}
}

// RemoteRef builds a recommended entry.
func RemoteRef(title, artist string) TrackRef {
	return TrackRef{Title: strings.TrimSpace(title), Artist: strings.TrimSpace(artist)}
}

// ParseRemoteRef splits a "Title - Artist" identifier on its first separator.
func ParseRemoteRef(s string) TrackRef {
	title, artist, _ := strings.Cut(s, " - ")
	return RemoteRef(title, artist)
}

// String renders the entry the way the station refers to it on air.
func (r TrackRef) String() string {
	if r.Path != "" {
		return r.Path
	}
	if r.Artist == "" {
		return r.Title
	}
	return r.Title + " - " + r.Artist
}

// TrackKind is the play-time classification of an entry.
type TrackKind int

const (
	// KindLocal entries have readable audio on disk.
	KindLocal TrackKind = iota
	// KindRemote entries are announced only.
	KindRemote
)

func (k TrackKind) String() string {
	if k == KindLocal {
		return "local"
	}
	return "remote"
}

// ResolvedTrack is a TrackRef after its play-time existence check.
type ResolvedTrack struct {
	Ref    TrackRef
	Kind   TrackKind
	Title  string
	Artist string
}

// Classify resolves ref against exists. A local entry whose file is gone
// degrades to an announce-only entry titled by its filename.
func Classify(ref TrackRef, exists func(path string) bool) ResolvedTrack {
	if ref.Path != "" {
		name := filepath.Base(ref.Path)
		if exists(ref.Path) {
			return ResolvedTrack{Ref: ref, Kind: KindLocal, Title: name}
		}
		return ResolvedTrack{Ref: ref, Kind: KindRemote, Title: name}
	}
	return ResolvedTrack{Ref: ref, Kind: KindRemote, Title: ref.Title, Artist: ref.Artist}
}

// Playlist is one ordered pass of entries. It is replaced wholesale, never
// edited in place.
type Playlist []TrackRef

// LocalPaths returns the paths of the catalog entries, in playlist order.
func (p Playlist) LocalPaths() []string {
	var out []string
	for _, ref := range p {
		if ref.Path != "" {
			out = append(out, ref.Path)
		}
	}
	return out
}
