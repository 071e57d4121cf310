package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/kanban"
)

const (
	internalError = "Internal server error"
	maxBodyBytes  = 1 << 20
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes. Anything unclassified is
// logged and reported as a bare 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *kanban.ValidationError
		nerr *kanban.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error(), Code: "validation_failed"})
	case errors.As(err, &nerr):
		writeJSON(w, http.StatusNotFound, errorBody{Error: nerr.Error(), Code: "not_found"})
	default:
		s.logger.Error("Request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: internalError})
	}
}

// decodeJSON reads a JSON body into dst. Malformed bodies are validation
// errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &kanban.ValidationError{Field: "body", Message: "request body is empty"}
		}
		return &kanban.ValidationError{Field: "body", Message: "malformed JSON"}
	}
	return nil
}

// idParam reads a positive numeric path parameter
func idParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &kanban.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return uint(id), nil
}
