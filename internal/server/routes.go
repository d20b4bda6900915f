package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires every endpoint. Ingestion and exports are POST-only;
// stats and health are GET-only.
func NewRouter(s *Server) http.Handler {
	r := mux.NewRouter()
	r.Use(RequestLogger)

	r.HandleFunc("/api/game-analytics", s.handleIngest).Methods("POST")
	r.HandleFunc("/api/sync", s.handleSync).Methods("POST")
	r.HandleFunc("/api/plane-stats", s.handleStats).Methods("GET")

	r.HandleFunc("/api/export/games", s.handleExportGames).Methods("POST")
	r.HandleFunc("/api/export/stats", s.handleExportStats).Methods("POST")
	r.HandleFunc("/api/export/dashboard", s.handleExportDashboard).Methods("POST")
	r.HandleFunc("/api/export/csv", s.handleExportCSV).Methods("POST")

	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	return r
}
