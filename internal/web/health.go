package web

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

func (s *Server) healthDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("Database health check failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "db": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "connected"})
}
