package analytics

import (
	"fmt"
	"math"
	"sort"

	"planestats/internal/db"
)

const recentLimit = 10

// scoreBuckets are the fixed histogram ranges: ten 5-wide buckets and an
// open-ended top bucket.
var scoreBuckets = []string{
	"0-4", "5-9", "10-14", "15-19", "20-24",
	"25-29", "30-34", "35-39", "40-44", "45-49", "50+",
}

type Store interface {
	ListSessions() ([]db.SessionRecord, error)
}

type Queries struct {
	Store Store
}

func NewQueries(store Store) *Queries {
	return &Queries{Store: store}
}

// GetStats reads the full record set and computes a fresh aggregate view.
func (q *Queries) GetStats() (Stats, error) {
	records, err := q.Store.ListSessions()
	if err != nil {
		return Stats{}, fmt.Errorf("getting stats: %w", err)
	}
	return Compute(records), nil
}

// Compute derives the aggregate view from a record set. An empty set yields
// zero scalars, not an error.
func Compute(records []db.SessionRecord) Stats {
	stats := Stats{
		DeathReasons:      make(map[string]int),
		RecentGames:       []RecentGame{},
		ScoreDistribution: make(map[string]int),
		AllGames:          make([]GamePoint, 0, len(records)),
	}
	for _, b := range scoreBuckets {
		stats.ScoreDistribution[b] = 0
	}

	stats.TotalGames = len(records)

	var scoreSum, durationSum, bulletSum int
	for _, rec := range records {
		scoreSum += rec.Score
		durationSum += rec.GameDuration
		bulletSum += rec.BulletsFired
		if rec.Score > stats.MaxScore {
			stats.MaxScore = rec.Score
		}
		if rec.BulletsFired > stats.MaxBullets {
			stats.MaxBullets = rec.BulletsFired
		}
		if rec.DeathReason != nil {
			stats.DeathReasons[*rec.DeathReason]++
		}
		stats.ScoreDistribution[bucketFor(rec.Score)]++
		stats.AllGames = append(stats.AllGames, GamePoint{
			Score:    rec.Score,
			Coins:    rec.CoinsCollected,
			Ufos:     rec.UfosShot,
			Bullets:  rec.BulletsFired,
			Duration: rec.GameDuration,
		})
	}

	if len(records) > 0 {
		n := float64(len(records))
		stats.AvgScore = round1(float64(scoreSum) / n)
		stats.AvgDuration = round1(float64(durationSum) / n)
		stats.AvgBullets = round1(float64(bulletSum) / n)
	}

	stats.RecentGames = recentGames(records)

	return stats
}

// bucketFor places a score in its histogram bucket. Scores below five,
// including negatives, fall into the bottom bucket so that bucket counts
// always sum to the record count.
func bucketFor(score int) string {
	if score >= 50 {
		return "50+"
	}
	if score < 5 {
		return "0-4"
	}
	lo := (score / 5) * 5
	return fmt.Sprintf("%d-%d", lo, lo+4)
}

// recentGames returns the ten most recently ended sessions, newest first.
// Ties on end time break on id so output is deterministic for a fixed set.
func recentGames(records []db.SessionRecord) []RecentGame {
	sorted := make([]db.SessionRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].EndTime != sorted[j].EndTime {
			return sorted[i].EndTime > sorted[j].EndTime
		}
		return sorted[i].ID < sorted[j].ID
	})

	if len(sorted) > recentLimit {
		sorted = sorted[:recentLimit]
	}

	recent := make([]RecentGame, 0, len(sorted))
	for _, rec := range sorted {
		recent = append(recent, RecentGame{
			Score:       rec.Score,
			Coins:       rec.CoinsCollected,
			Ufos:        rec.UfosShot,
			Bullets:     rec.BulletsFired,
			Duration:    rec.GameDuration,
			DeathReason: rec.DeathReason,
		})
	}
	return recent
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
