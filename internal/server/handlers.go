package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"artdesk/internal/metrics"
	"artdesk/internal/storage"
)

// maxBodyBytes bounds a single save request.
const maxBodyBytes = 64 << 20

var emptyArray = json.RawMessage("[]")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLoad(t table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value, err := s.store.Get(r.Context(), t.key)
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info("no stored table", zap.String("key", t.key))
			writeJSON(w, http.StatusOK, map[string]json.RawMessage{t.field: emptyArray})
			return
		}
		if err != nil {
			s.logger.Error("load failed", zap.String("key", t.key), zap.Error(err))
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load %s: %v", t.subject, err))
			return
		}
		if !json.Valid(value) {
			s.logger.Error("stored table is not valid JSON", zap.String("key", t.key))
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load %s: stored value is corrupt", t.subject))
			return
		}
		writeJSON(w, http.StatusOK, map[string]json.RawMessage{t.field: value})
	}
}

func (s *Server) handleSave(t table) http.HandlerFunc {
	invalid := fmt.Sprintf("Invalid %s format", t.subject)
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, invalid)
			return
		}
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			writeError(w, http.StatusBadRequest, invalid)
			return
		}
		var items []json.RawMessage
		raw, ok := envelope[t.field]
		if !ok || json.Unmarshal(raw, &items) != nil || items == nil {
			writeError(w, http.StatusBadRequest, invalid)
			return
		}

		if err := s.store.Set(r.Context(), t.key, raw); err != nil {
			s.logger.Error("save failed", zap.String("key", t.key), zap.Error(err))
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save %s: %v", t.subject, err))
			return
		}
		metrics.BlobRows.WithLabelValues(t.key).Set(float64(len(items)))
		s.logger.Info("saved table", zap.String("key", t.key), zap.Int(t.noun, len(items)))

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": fmt.Sprintf("Saved %d %s successfully", len(items), t.noun),
		})
	}
}
