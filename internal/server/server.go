package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"planestats/internal/analytics"
	"planestats/internal/config"
	"planestats/internal/db"
	"planestats/internal/export"
	"planestats/internal/ingest"
)

type Server struct {
	Ingest   *ingest.Processor
	Stats    *analytics.Queries
	Exporter *export.Exporter
	DB       *db.DB // nil in handler tests
}

func Run() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: no .env file loaded: %v\n", err)
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	srv := &Server{
		Ingest:   ingest.NewProcessor(database),
		Stats:    analytics.NewQueries(database),
		Exporter: export.NewExporter(database, cfg.ExportDir),
		DB:       database,
	}

	addr := "0.0.0.0:" + cfg.Port
	log.Printf("Plane analytics server listening on http://localhost:%s\n", cfg.Port)
	return http.ListenAndServe(addr, NewRouter(srv))
}
