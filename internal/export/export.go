// Package export materializes point-in-time snapshots of the record store
// into static artifacts: raw JSON, aggregate JSON, CSV, and a self-contained
// HTML dashboard. Each call re-reads the store and overwrites the artifact
// in place; there is no caching and no versioning.
package export

import (
	"bytes"
	"embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"planestats/internal/analytics"
	"planestats/internal/db"
)

//go:embed templates/dashboard.html
var templatesFS embed.FS

const (
	GamesFile     = "games.json"
	StatsFile     = "stats.json"
	DashboardFile = "dashboard.html"
	CSVFile       = "game_sessions.csv"
)

type Store interface {
	ListSessions() ([]db.SessionRecord, error)
}

type Exporter struct {
	Store Store
	Dir   string

	// now is swappable in tests.
	now func() time.Time
}

func NewExporter(store Store, dir string) *Exporter {
	return &Exporter{Store: store, Dir: dir, now: time.Now}
}

// clientGame is a record under the client-facing field names.
type clientGame struct {
	GameID         string  `json:"gameId"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	Score          int     `json:"score"`
	CoinsCollected int     `json:"coinsCollected"`
	UfosShot       int     `json:"ufosShot"`
	BulletsFired   int     `json:"bulletsFired"`
	DeathReason    *string `json:"deathReason"`
	GameDuration   int     `json:"gameDuration"`
	PipesPassed    int     `json:"pipesPassed"`
	ReceivedAt     string  `json:"receivedAt"`
}

type rawExport struct {
	Games       []clientGame `json:"games"`
	LastUpdated string       `json:"last_updated"`
	TotalGames  int          `json:"total_games"`
}

type statsExport struct {
	analytics.Stats
	LastUpdated string `json:"last_updated"`
}

// ExportGames writes every stored record to games.json and returns how many
// records the artifact contains.
func (e *Exporter) ExportGames() (int, error) {
	records, err := e.Store.ListSessions()
	if err != nil {
		return 0, fmt.Errorf("exporting games: %w", err)
	}

	out := rawExport{
		Games:       make([]clientGame, 0, len(records)),
		LastUpdated: e.now().UTC().Format(time.RFC3339),
		TotalGames:  len(records),
	}
	for _, rec := range records {
		out.Games = append(out.Games, clientGame{
			GameID:         rec.ID,
			StartTime:      rec.StartTime,
			EndTime:        rec.EndTime,
			Score:          rec.Score,
			CoinsCollected: rec.CoinsCollected,
			UfosShot:       rec.UfosShot,
			BulletsFired:   rec.BulletsFired,
			DeathReason:    rec.DeathReason,
			GameDuration:   rec.GameDuration,
			PipesPassed:    rec.PipesPassed,
			ReceivedAt:     rec.ReceivedAt.UTC().Format(time.RFC3339),
		})
	}

	if err := e.writeJSON(GamesFile, out); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ExportStats writes a fresh aggregate view to stats.json.
func (e *Exporter) ExportStats() error {
	records, err := e.Store.ListSessions()
	if err != nil {
		return fmt.Errorf("exporting stats: %w", err)
	}
	out := statsExport{
		Stats:       analytics.Compute(records),
		LastUpdated: e.now().UTC().Format(time.RFC3339),
	}
	return e.writeJSON(StatsFile, out)
}

// ExportDashboard renders a standalone HTML document with the current
// aggregate view inlined, so the charts work without a running server.
func (e *Exporter) ExportDashboard() error {
	records, err := e.Store.ListSessions()
	if err != nil {
		return fmt.Errorf("exporting dashboard: %w", err)
	}
	stats := analytics.Compute(records)

	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encoding dashboard stats: %w", err)
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/dashboard.html")
	if err != nil {
		return fmt.Errorf("parsing dashboard template: %w", err)
	}

	var buf bytes.Buffer
	data := struct {
		GeneratedAt string
		StatsJSON   template.JS
	}{
		GeneratedAt: e.now().UTC().Format(time.RFC3339),
		StatsJSON:   template.JS(statsJSON),
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering dashboard: %w", err)
	}

	return e.writeFile(DashboardFile, buf.Bytes())
}

// ExportCSV flattens every stored record into game_sessions.csv with a
// header row.
func (e *Exporter) ExportCSV() error {
	records, err := e.Store.ListSessions()
	if err != nil {
		return fmt.Errorf("exporting csv: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"id", "start_time", "end_time", "score", "coins_collected",
		"ufos_shot", "bullets_fired", "death_reason", "game_duration",
		"pipes_passed", "received_at",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, rec := range records {
		reason := ""
		if rec.DeathReason != nil {
			reason = *rec.DeathReason
		}
		row := []string{
			rec.ID, rec.StartTime, rec.EndTime,
			strconv.Itoa(rec.Score), strconv.Itoa(rec.CoinsCollected),
			strconv.Itoa(rec.UfosShot), strconv.Itoa(rec.BulletsFired),
			reason, strconv.Itoa(rec.GameDuration),
			strconv.Itoa(rec.PipesPassed),
			rec.ReceivedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return e.writeFile(CSVFile, buf.Bytes())
}

func (e *Exporter) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return e.writeFile(name, data)
}

func (e *Exporter) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(e.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
