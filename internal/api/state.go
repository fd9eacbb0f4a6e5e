package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// StateResponse is returned by the state and raw endpoints.
type StateResponse struct {
	Path    string      `json:"path"`
	Present bool        `json:"present"`
	Value   state.Value `json:"value"`
}

// SetRequest is the body of PUT /state/*.
type SetRequest struct {
	Value *state.Value `json:"value"`
}

// CollectionRequest is the body of POST /collection/*.
type CollectionRequest struct {
	Verb string        `json:"verb"`
	Args []state.Value `json:"args"`
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

// pathParam returns the wildcard path without surrounding slashes.
func pathParam(r *http.Request) string {
	return strings.Trim(chi.URLParam(r, "*"), "/")
}

func channelOf(path string) state.Channel {
	head, _, _ := strings.Cut(path, "/")
	return state.Channel(head)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.readPath(w, r, s.session.Read)
}

func (s *Server) handleGetRaw(w http.ResponseWriter, r *http.Request) {
	s.readPath(w, r, s.session.ReadRaw)
}

func (s *Server) readPath(w http.ResponseWriter, r *http.Request, read func(context.Context, string) (state.Value, error)) {
	path := pathParam(r)
	if _, err := state.ParseChannel(string(channelOf(path))); err != nil {
		writeBadRequest(w, "path must start with shared, hardware or local")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	v, err := read(ctx, path)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{Path: path, Present: !v.IsAbsent(), Value: v})
}

// handlePutState sends a hardware command or stores a local value.
func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	path := pathParam(r)

	var req SetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Value == nil {
		writeBadRequest(w, "value is required")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	switch channelOf(path) {
	case state.ChannelHardware:
		if err := s.session.SetValue(ctx, path, *req.Value); err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent", "path": path})
	case state.ChannelLocal:
		if err := s.session.WriteLocal(ctx, path, *req.Value); err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "stored", "path": path})
	case state.ChannelShared:
		writeBadRequest(w, "shared state is changed through /api/v1/collection")
	default:
		writeBadRequest(w, "path must start with hardware or local")
	}
}

// handleCollection sends a named-verb command for a shared collection.
func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	path := pathParam(r)

	var req CollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Verb == "" {
		writeBadRequest(w, "verb is required")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.session.CollectionOp(ctx, req.Verb, path, req.Args...); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent", "verb": req.Verb, "path": path})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	info, err := s.session.Describe(ctx)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleOutputs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	outputs, err := s.session.DerivedOutputs(ctx)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	if prefix := r.URL.Query().Get("prefix"); prefix != "" {
		for name := range outputs {
			if !strings.HasPrefix(name, prefix) {
				delete(outputs, name)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"outputs": outputs, "count": len(outputs)})
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	captured, err := s.session.CaptureLast(ctx)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, captured)
}
