package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"tailplane/config"
	"tailplane/model"
	"tailplane/storage"
	"tailplane/theme"
	"tailplane/watcher"
)

// Server exposes the configuration held by a watcher over HTTP.
type Server struct {
	watcher  *watcher.Watcher
	store    *storage.Store
	sources  []string
	colors   *theme.Handler
	ws       *WSConnectionManager
	upgrader websocket.Upgrader
	log      zerolog.Logger

	matcherMu     sync.Mutex
	matcher       *config.Matcher
	matcherDigest string
}

// NewServer creates a server and hooks it to the watcher's change and error
// events. store may be nil, in which case no snapshots are recorded.
func NewServer(w *watcher.Watcher, store *storage.Store, sources []string, logger zerolog.Logger) *Server {
	s := &Server{
		watcher: w,
		store:   store,
		sources: append([]string(nil), sources...),
		ws:      NewWSConnectionManager(),
		log:     logger,
	}
	s.colors = theme.NewHandler(theme.ColorSourceFunc(func() map[string]string {
		return s.watcher.Current().Colors()
	}))

	w.OnChange(s.configChanged)
	w.OnError(func(err error) {
		metricReloads.WithLabelValues("failed").Inc()
	})

	return s
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/content", s.handleContent)
	mux.HandleFunc("/api/darkmode", s.handleDarkMode)
	mux.HandleFunc("/api/match", s.handleMatch)
	mux.HandleFunc("/api/reload", s.handleReload)
	mux.HandleFunc("/api/snapshots", s.handleSnapshots)
	mux.HandleFunc("/api/colors", s.colors.HandleColors)
	mux.HandleFunc("/api/ws", s.handleWebSocket)
	mux.Handle("/metrics", promhttp.Handler())
}

// Clients returns the websocket connection manager.
func (s *Server) Clients() *WSConnectionManager {
	return s.ws
}

type wsMessage struct {
	Type   string         `json:"type"`
	Digest string         `json:"digest"`
	Config model.Document `json:"config"`
}

func (s *Server) configChanged(rec config.Record) {
	metricReloads.WithLabelValues("changed").Inc()
	metricPatterns.Set(float64(len(rec.Content())))
	metricColors.Set(float64(len(rec.Colors())))

	if _, err := s.matcherFor(rec); err != nil {
		s.log.Error().Err(err).Msg("compile content patterns")
	}
	s.recordSnapshot(rec)

	s.ws.Broadcast(wsMessage{
		Type:   "config_updated",
		Digest: rec.Digest(),
		Config: rec.Document(),
	})
}

func (s *Server) recordSnapshot(rec config.Record) {
	if s.store == nil {
		return
	}

	latest, err := s.store.Latest()
	if err == nil && latest.Digest == rec.Digest() {
		return
	}

	snap := storage.NewSnapshot(rec, s.sources, time.Now())
	if err := s.store.SaveSnapshot(snap); err != nil {
		metricSnapshotErrors.Inc()
		s.log.Error().Err(err).Msg("failed to save snapshot")
		return
	}
	s.log.Debug().Str("id", snap.ID).Str("digest", snap.Digest).Msg("saved snapshot")
}

// matcherFor returns the compiled content patterns of rec, reusing the last
// compilation while the digest is unchanged.
func (s *Server) matcherFor(rec config.Record) (*config.Matcher, error) {
	digest := rec.Digest()

	s.matcherMu.Lock()
	defer s.matcherMu.Unlock()

	if s.matcher != nil && s.matcherDigest == digest {
		return s.matcher, nil
	}

	m, err := rec.Matcher()
	if err != nil {
		return nil, err
	}
	s.matcher, s.matcherDigest = m, digest
	return m, nil
}

// current writes 503 and returns false when nothing has been loaded yet.
func (s *Server) current(w http.ResponseWriter) (config.Record, bool) {
	rec := s.watcher.Current()
	if rec.IsZero() {
		http.Error(w, "configuration not loaded", http.StatusServiceUnavailable)
		return rec, false
	}
	return rec, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status": "ok",
		"loaded": !s.watcher.Current().IsZero(),
	}
	writeJSON(w, http.StatusOK, resp)
}

var contentTypes = map[config.Format]string{
	config.FormatJSON: "application/json",
	config.FormatYAML: "application/yaml",
	config.FormatTOML: "application/toml",
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	format := config.FormatJSON
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := config.ParseFormat(v)
		if err != nil {
			http.Error(w, "invalid format", http.StatusBadRequest)
			return
		}
		format = f
	}

	rec, ok := s.current(w)
	if !ok {
		return
	}

	data, err := config.Marshal(rec, format)
	if err != nil {
		s.log.Error().Err(err).Str("format", string(format)).Msg("marshal configuration")
		http.Error(w, "failed to encode configuration", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("ETag", `"`+rec.Digest()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"content": rec.Content()})
}

type darkModeResponse struct {
	DarkMode  model.DarkMode `json:"darkMode"`
	Effective model.DarkMode `json:"effective"`
}

func (s *Server) handleDarkMode(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, darkModeResponse{
		DarkMode:  rec.DarkMode(),
		Effective: rec.EffectiveDarkMode(),
	})
}

type matchResult struct {
	Path    string `json:"path"`
	Matched bool   `json:"matched"`
	Pattern string `json:"pattern,omitempty"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	paths := r.URL.Query()["path"]
	if len(paths) == 0 {
		http.Error(w, "missing path", http.StatusBadRequest)
		return
	}

	rec, ok := s.current(w)
	if !ok {
		return
	}

	m, err := s.matcherFor(rec)
	if err != nil {
		s.log.Error().Err(err).Msg("compile content patterns")
		http.Error(w, "failed to compile patterns", http.StatusInternalServerError)
		return
	}

	results := make([]matchResult, 0, len(paths))
	for _, p := range paths {
		pattern, matched := m.Match(p)
		results = append(results, matchResult{Path: p, Matched: matched, Pattern: pattern})
	}
	writeJSON(w, http.StatusOK, results)
}

type reloadResponse struct {
	Changed bool     `json:"changed"`
	Digest  string   `json:"digest,omitempty"`
	Error   string   `json:"error,omitempty"`
	Issues  []string `json:"issues,omitempty"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	changed, err := s.watcher.Reload(r.Context())
	if err != nil {
		resp := reloadResponse{Error: err.Error()}
		status := http.StatusInternalServerError

		var verr *config.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusUnprocessableEntity
			for _, issue := range verr.Issues {
				resp.Issues = append(resp.Issues, issue.Error())
			}
		}
		writeJSON(w, status, resp)
		return
	}

	if !changed {
		metricReloads.WithLabelValues("unchanged").Inc()
	}
	writeJSON(w, http.StatusOK, reloadResponse{
		Changed: changed,
		Digest:  s.watcher.Current().Digest(),
	})
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "snapshots not enabled", http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	var from, to time.Time

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid to", http.StatusBadRequest)
			return
		}
		to = t
	}

	snaps, err := s.store.ListSnapshots(from, to)
	if err != nil {
		s.log.Error().Err(err).Msg("list snapshots")
		http.Error(w, "failed to load snapshots", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, snaps)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	s.ws.Add(conn)
	defer func() {
		s.ws.Remove(conn)
		conn.Close()
	}()

	if rec := s.watcher.Current(); !rec.IsZero() {
		msg := wsMessage{Type: "config", Digest: rec.Digest(), Config: rec.Document()}
		if err := s.ws.WriteJSON(conn, msg); err != nil {
			return
		}
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
