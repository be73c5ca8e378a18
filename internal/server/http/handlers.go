package httpserver

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/m-yakovlev/sealnote/internal/convert"
	"github.com/m-yakovlev/sealnote/internal/errs"
)

// errorBody is the machine-readable error envelope. Server-side detail is
// logged, never sent: the client gets a kind and a generic message.
type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error            errorBody `json:"error"`
	RequiresPassword bool      `json:"requiresPassword,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req convert.CreateNoteRequest
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "malformed request body", false)
		return
	}

	in, err := convert.FromWireCreate(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", err.Error(), false)
		return
	}

	created, err := s.notes.Create(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.CreateNoteResponse{
		ID:          created.ID.String(),
		CreatedAt:   created.CreatedAt,
		DeleteToken: created.DeleteToken,
	})
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		// Malformed ids are indistinguishable from unknown ones.
		writeError(w, http.StatusNotFound, "not_found", "note not found", false)
		return
	}

	view, err := s.notes.ReadWithIP(r.Context(), id, r.URL.Query().Get("password"), remoteIP(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToWireNote(view))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "note not found", false)
		return
	}

	if s.restrictDelete {
		if err := s.notes.VerifyDeleteToken(bearerToken(r), id); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "deletion token required", false)
			return
		}
	}

	if err := s.notes.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondError maps service errors onto the wire taxonomy.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isValidation(err):
		writeError(w, http.StatusBadRequest, "validation", err.Error(), false)
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "note not found", false)
	case errors.Is(err, errs.ErrPasswordRequired):
		writeError(w, http.StatusUnauthorized, "unauthorized", "password required", true)
	case errors.Is(err, errs.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid password", false)
	case errors.Is(err, errs.ErrGone):
		writeError(w, http.StatusGone, "gone", "note no longer available", false)
	case errors.Is(err, errs.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts", false)
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal", "internal error", false)
	}
}

func isValidation(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "validation:")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string, requiresPassword bool) {
	writeJSON(w, status, errorResponse{
		Error:            errorBody{Kind: kind, Message: msg},
		RequiresPassword: requiresPassword,
	})
}

func bearerToken(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return ""
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
