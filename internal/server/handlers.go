package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dtnitsch/cbsl-assistant/models"
	"go.uber.org/zap"
)

const maxRequestBytes = 64 << 10

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Text   string          `json:"text"`
	Source string          `json:"source,omitempty"`
	Lang   models.Language `json:"lang,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.logger.Debug("invalid ask request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, askResponse{
			Text:  models.EmptyQueryPrompt,
			Error: "invalid_request",
		})
		return
	}

	// a started question runs to completion even if the client goes away
	out := s.asker.Ask(context.WithoutCancel(r.Context()), req.Query)

	if out.Fatal() {
		writeJSON(w, http.StatusInternalServerError, askResponse{
			Text:  out.Answer,
			Error: string(out.Reason),
		})
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Text:   out.Answer,
		Source: out.Source,
		Lang:   out.Language,
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := s.recentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be an integer"})
			return
		}
		limit = n
	}

	entries, err := s.asker.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to fetch logs", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "unable to fetch logs"})
		return
	}
	if entries == nil {
		entries = []models.LogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
