package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"planestats/internal/ingest"
)

// syncEnvelope is the offline-queue wrapper the client flushes in one shot.
type syncEnvelope struct {
	Games []json.RawMessage `json:"games"`
}

// handleIngest accepts one record or an ordered batch. The payload shape is
// detected here, at the transport boundary; the processor itself only sees
// typed calls.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}

	if isJSONArray(body) {
		var batch []json.RawMessage
		if err := json.Unmarshal(body, &batch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid batch payload")
			return
		}
		res, err := s.Ingest.ProcessBatch(batch)
		s.respondBatch(w, res, err)
		return
	}

	var payload ingest.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := s.Ingest.ProcessOne(payload); err != nil {
		log.Printf("[Ingest] %v\n", err)
		status := http.StatusInternalServerError
		if errors.Is(err, ingest.ErrMissingID) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleSync drains a client-side offline queue. Identical to the batch
// ingest path, just unwrapped from its envelope.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var env syncEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeError(w, http.StatusBadRequest, "invalid sync payload")
		return
	}
	res, err := s.Ingest.ProcessBatch(env.Games)
	s.respondBatch(w, res, err)
}

func (s *Server) respondBatch(w http.ResponseWriter, res ingest.Result, err error) {
	if err != nil {
		log.Printf("[Ingest] %v\n", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Processed %d/%d analytics", res.Processed, res.Total),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Stats.GetStats()
	if err != nil {
		log.Printf("[Stats] %v\n", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExportGames(w http.ResponseWriter, r *http.Request) {
	n, err := s.Exporter.ExportGames()
	if err != nil {
		log.Printf("[Export] %v\n", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "success",
		"exported_games": n,
	})
}

func (s *Server) handleExportStats(w http.ResponseWriter, r *http.Request) {
	s.runExport(w, s.Exporter.ExportStats)
}

func (s *Server) handleExportDashboard(w http.ResponseWriter, r *http.Request) {
	s.runExport(w, s.Exporter.ExportDashboard)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.runExport(w, s.Exporter.ExportCSV)
}

func (s *Server) runExport(w http.ResponseWriter, export func() error) {
	if err := export(); err != nil {
		log.Printf("[Export] %v\n", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "db_error",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "plane-analytics",
	})
}

func isJSONArray(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] encoding response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": message,
	})
}
