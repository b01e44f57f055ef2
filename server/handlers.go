package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"vintagefm/logger"
	"vintagefm/model"
)

const pollInterval = 5 * time.Second

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", logger.ErrorField(err))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTemplate.Execute(w, indexData{
		Station:    s.cfg.Station.Name,
		PollMillis: int(pollInterval / time.Millisecond),
	})
	if err != nil {
		logger.Error("failed to render index", logger.ErrorField(err))
	}
}

func (s *Server) handleNowPlaying(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.NowPlaying().Get())
}

// flushWriter pushes every write to the client so listeners hear audio as
// soon as it is produced.
type flushWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func (f *flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return n, err
	}
	if err := f.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return n, err
	}
	return n, nil
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream never ends, so no write deadline applies to it.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Warn("failed to clear write deadline", logger.ErrorField(err))
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	err := s.engine.Stream(r.Context(), &flushWriter{w: w, rc: rc}, r.RemoteAddr)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Debug("stream ended", logger.String("remote", r.RemoteAddr), logger.ErrorField(err))
	}
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	gen := s.engine.Station().Skip(r.Context())

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, skipPage)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "skipping",
		"generation": gen,
	})
}

type healthResponse struct {
	Status     string   `json:"status"`
	Catalog    int      `json:"catalog"`
	Missing    []string `json:"missing"`
	Added      []string `json:"added"`
	Playlist   int      `json:"playlist"`
	Generation uint64   `json:"generation"`
	Listeners  int      `json:"listeners"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.engine.Station().Status()
	resp := healthResponse{
		Status:     "ok",
		Catalog:    s.catalogFiles,
		Missing:    []string{},
		Added:      []string{},
		Playlist:   st.Playlist,
		Generation: st.Generation,
		Listeners:  s.engine.Listeners().Count(),
	}
	if s.drift != nil {
		resp.Missing = s.drift.Missing()
		resp.Added = s.drift.Added()
	}
	writeJSON(w, http.StatusOK, resp)
}

type playlistEntry struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
}

type playlistResponse struct {
	Generation uint64          `json:"generation"`
	Local      int             `json:"local"`
	Entries    []playlistEntry `json:"entries"`
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, gen := s.engine.Station().Snapshot()
	resp := playlistResponse{
		Generation: gen,
		Local:      len(playlist.LocalPaths()),
		Entries:    make([]playlistEntry, 0, len(playlist)),
	}
	for _, ref := range playlist {
		if ref.Path != "" {
			resp.Entries = append(resp.Entries, playlistEntry{Source: model.SourceLocal, Title: filepath.Base(ref.Path)})
			continue
		}
		resp.Entries = append(resp.Entries, playlistEntry{Source: model.SourceRemote, Title: ref.Title, Artist: ref.Artist})
	}
	writeJSON(w, http.StatusOK, resp)
}
