// internal/httpapi/server.go
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dnaweav/tradesman-ai-assist/internal/layout"
	"github.com/dnaweav/tradesman-ai-assist/internal/pipeline"
	"github.com/dnaweav/tradesman-ai-assist/internal/settings"
	"github.com/dnaweav/tradesman-ai-assist/internal/transcript"
	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

// LayoutSettings carries the fixed screen geometry for the layout
// endpoints. Zero values fall back to the layout package defaults.
type LayoutSettings struct {
	Footer            layout.FooterConfig
	KeyboardThreshold int
}

// Server is the HTTP surface over the chat pipeline. It keeps one open
// pipeline view per session so repeated requests share transcript state
// the way a mounted screen would.
type Server struct {
	pipeline *pipeline.Pipeline
	settings *settings.Coordinator
	store    types.RecordStore
	filesDir string
	footer   *layout.FooterBroadcaster
	kbThresh int
	mux      *http.ServeMux

	mu       sync.Mutex
	views    map[types.SessionID]*pipeline.View
	pinners  map[types.SessionID]*transcript.Pinner
	keyboard *layout.KeyboardMonitor
}

// NewServer creates a Server. filesDir, when non-empty, is served under
// /files/ so uploaded attachments resolve.
func NewServer(p *pipeline.Pipeline, coord *settings.Coordinator, store types.RecordStore, filesDir string, lay LayoutSettings) *Server {
	threshold := lay.KeyboardThreshold
	if threshold <= 0 {
		threshold = layout.TouchKeyboardThreshold
	}
	s := &Server{
		pipeline: p,
		settings: coord,
		store:    store,
		filesDir: filesDir,
		footer:   layout.NewFooterBroadcaster(lay.Footer),
		kbThresh: threshold,
		mux:      http.NewServeMux(),
		views:    make(map[types.SessionID]*pipeline.View),
		pinners:  make(map[types.SessionID]*transcript.Pinner),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("PATCH /api/sessions/{id}", s.handleSaveSession)
	s.mux.HandleFunc("GET /api/sessions/{id}/messages", s.handleTranscript)
	s.mux.HandleFunc("POST /api/sessions/{id}/messages", s.handleSend)
	s.mux.HandleFunc("POST /api/sessions/{id}/tags/{tagID}", s.handleToggleTag)
	s.mux.HandleFunc("GET /api/layout", s.handleLayout)
	s.mux.HandleFunc("POST /api/layout/input-height", s.handleInputHeight)
	s.mux.HandleFunc("POST /api/layout/viewport", s.handleViewport)
	if filesDir != "" {
		s.mux.Handle("GET /files/", http.StripPrefix("/files/", http.FileServer(http.Dir(filesDir))))
	}
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// NotifyAll re-fires change notifications on every open view. Wired to the
// midnight label refresher.
func (s *Server) NotifyAll() {
	s.mu.Lock()
	views := make([]*pipeline.View, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	s.mu.Unlock()

	for _, v := range views {
		v.Notify()
	}
}

// Close releases all open views.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, v := range s.views {
		v.Close()
		delete(s.views, id)
		delete(s.pinners, id)
	}
}

// userID extracts the acting user. Authentication is out of scope; the
// header stands in for the authenticated principal.
func userID(r *http.Request) types.UserID {
	if u := r.Header.Get("X-User-ID"); u != "" {
		return types.UserID(u)
	}
	return types.UserID("local")
}

// view returns the open view for the session, opening one on first use.
// A view that failed to load is never kept: each request retries
// resolution until one succeeds, so a transient store outage does not
// pin the session to the degraded fallback.
func (s *Server) view(r *http.Request, sessionID types.SessionID) *pipeline.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views[sessionID]; ok {
		if v.Snapshot().LoadError == "" {
			return v
		}
		v.Close()
		delete(s.views, sessionID)
	}
	v := s.pipeline.Open(r.Context(), sessionID, userID(r))
	if v.Snapshot().LoadError == "" {
		s.views[sessionID] = v
	}
	return v
}

// pinned reports whether the session's transcript view should snap to the
// bottom, given the latest message count and streaming flag.
func (s *Server) pinned(sessionID types.SessionID, count int, streaming bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pinners[sessionID]
	if !ok {
		p = &transcript.Pinner{}
		s.pinners[sessionID] = p
	}
	return p.Observe(count, streaming)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func sessionID(r *http.Request) (types.SessionID, bool) {
	id, err := types.ParseSessionID(r.PathValue("id"))
	if err != nil {
		return "", false
	}
	return id, true
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context(), userID(r))
	if err != nil {
		slog.Error("list sessions failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []*types.Session{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

type sessionResponse struct {
	Session *types.Session `json:"session"`
	TagIDs  []types.TagID  `json:"tag_ids"`
	Error   string         `json:"error,omitempty"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, `{"error":"invalid session id"}`, http.StatusBadRequest)
		return
	}

	v := s.view(r, id)
	snap := v.Snapshot()

	tagIDs, err := s.store.ListSessionTags(r.Context(), id)
	if err != nil {
		slog.Warn("list session tags failed", "session_id", id, "error", err)
	}
	if tagIDs == nil {
		tagIDs = []types.TagID{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessionResponse{
		Session: &snap.Session,
		TagIDs:  tagIDs,
		Error:   snap.LoadError,
	})
}

// saveSessionRequest is the JSON body for PATCH /api/sessions/{id}.
type saveSessionRequest struct {
	Title        string `json:"title"`
	ChatType     string `json:"chat_type"`
	ContactID    string `json:"contact_id"`
	Description  string `json:"description"`
	VoiceEnabled bool   `json:"voice_enabled"`
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, `{"error":"invalid session id"}`, http.StatusBadRequest)
		return
	}

	var req saveSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	err := s.settings.Save(r.Context(), id, types.SessionFields{
		Title:        req.Title,
		ChatType:     req.ChatType,
		ContactID:    req.ContactID,
		Description:  req.Description,
		VoiceEnabled: req.VoiceEnabled,
	})
	if err != nil {
		slog.Error("save session failed", "session_id", id, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	// Keep the open view's auto-read state in step with the saved flag.
	s.mu.Lock()
	v := s.views[id]
	s.mu.Unlock()
	if v != nil {
		v.SetAutoRead(req.VoiceEnabled)
	}

	w.WriteHeader(http.StatusNoContent)
}

type transcriptResponse struct {
	Groups      []transcript.DayGroup `json:"groups"`
	Status      pipeline.Status       `json:"status"`
	Streaming   bool                  `json:"streaming"`
	PinToBottom bool                  `json:"pin_to_bottom"`
	Error       string                `json:"error,omitempty"`
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, `{"error":"invalid session id"}`, http.StatusBadRequest)
		return
	}

	snap := s.view(r, id).Snapshot()
	groups := transcript.Group(snap.Messages, time.Now())
	if groups == nil {
		groups = []transcript.DayGroup{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transcriptResponse{
		Groups:      groups,
		Status:      snap.Status,
		Streaming:   snap.Streaming,
		PinToBottom: s.pinned(id, len(snap.Messages), snap.Streaming),
		Error:       firstNonEmpty(snap.Error, snap.LoadError),
	})
}

// sendRequest is the JSON body for POST /api/sessions/{id}/messages.
type sendRequest struct {
	Text        string `json:"text"`
	Retry       bool   `json:"retry"`
	Attachments []struct {
		Name     string `json:"name"`
		MimeType string `json:"mime_type"`
		Data     []byte `json:"data"`
	} `json:"attachments"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, `{"error":"invalid session id"}`, http.StatusBadRequest)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	v := s.view(r, id)

	var err error
	if req.Retry {
		err = v.RetryGenerate()
	} else {
		uploads := make([]types.Upload, 0, len(req.Attachments))
		for _, a := range req.Attachments {
			uploads = append(uploads, types.Upload{Name: a.Name, MimeType: a.MimeType, Data: a.Data})
		}
		err = v.Send(r.Context(), req.Text, uploads)
	}

	switch {
	case err == nil:
	case errors.Is(err, pipeline.ErrEmptySend):
		http.Error(w, `{"error":"nothing to send"}`, http.StatusBadRequest)
		return
	case errors.Is(err, pipeline.ErrBusy):
		http.Error(w, `{"error":"send already in progress"}`, http.StatusConflict)
		return
	case errors.Is(err, pipeline.ErrNotRetryable):
		http.Error(w, `{"error":"no failed generation to retry"}`, http.StatusConflict)
		return
	default:
		slog.Error("send failed", "session_id", id, "error", err)
		http.Error(w, `{"error":"failed to send message"}`, http.StatusInternalServerError)
		return
	}

	snap := v.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(transcriptResponse{
		Groups:      transcript.Group(snap.Messages, time.Now()),
		Status:      snap.Status,
		Streaming:   snap.Streaming,
		PinToBottom: s.pinned(id, len(snap.Messages), snap.Streaming),
		Error:       snap.Error,
	})
}

func (s *Server) handleToggleTag(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, `{"error":"invalid session id"}`, http.StatusBadRequest)
		return
	}
	tagID := types.TagID(r.PathValue("tagID"))
	if tagID == "" {
		http.Error(w, `{"error":"tag id required"}`, http.StatusBadRequest)
		return
	}

	if err := s.settings.ToggleTag(r.Context(), id, tagID); err != nil {
		slog.Error("toggle tag failed", "session_id", id, "tag_id", tagID, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// layoutResponse is the combined screen-geometry state the client lays
// out against: the reserved footer height and the keyboard heuristic.
type layoutResponse struct {
	Reserved        int  `json:"reserved"`
	KeyboardVisible bool `json:"keyboard_visible"`
	KeyboardDelta   int  `json:"keyboard_delta"`
}

func (s *Server) layoutSnapshot() layoutResponse {
	resp := layoutResponse{Reserved: s.footer.Reserved()}
	s.mu.Lock()
	kb := s.keyboard
	s.mu.Unlock()
	if kb != nil {
		resp.KeyboardVisible = kb.Visible()
		resp.KeyboardDelta = kb.Delta()
	}
	return resp
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.layoutSnapshot())
}

// inputHeightRequest is the JSON body for POST /api/layout/input-height.
type inputHeightRequest struct {
	Height int `json:"height"`
}

func (s *Server) handleInputHeight(w http.ResponseWriter, r *http.Request) {
	var req inputHeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	s.footer.SetInputHeight(req.Height)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.layoutSnapshot())
}

// viewportRequest is the JSON body for POST /api/layout/viewport. Height
// carries a resize or visual-viewport event; FocusChanged is the focus or
// blur backup signal.
type viewportRequest struct {
	Height       int  `json:"height"`
	FocusChanged bool `json:"focus_changed"`
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	// The first reported height is the mount-time baseline the keyboard
	// heuristic measures shrink against.
	s.mu.Lock()
	if s.keyboard == nil && req.Height > 0 {
		s.keyboard = layout.NewKeyboardMonitor(req.Height, s.kbThresh)
	}
	kb := s.keyboard
	s.mu.Unlock()

	if kb != nil {
		if req.Height > 0 {
			kb.Observe(req.Height)
		}
		if req.FocusChanged {
			kb.FocusChanged()
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.layoutSnapshot())
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
