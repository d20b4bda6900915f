package analytics

// Stats is the full aggregate view served by the stats endpoint and embedded
// in exports. It is recomputed from the complete record set on every call.
type Stats struct {
	TotalGames        int            `json:"total_games"`
	AvgScore          float64        `json:"avg_score"`
	MaxScore          int            `json:"max_score"`
	AvgDuration       float64        `json:"avg_duration"`
	AvgBullets        float64        `json:"avg_bullets"`
	MaxBullets        int            `json:"max_bullets"`
	DeathReasons      map[string]int `json:"death_reasons"`
	RecentGames       []RecentGame   `json:"recent_games"`
	ScoreDistribution map[string]int `json:"score_distribution"`
	AllGames          []GamePoint    `json:"all_games"`
}

// RecentGame is one row of the most-recently-ended list.
type RecentGame struct {
	Score       int     `json:"score"`
	Coins       int     `json:"coins"`
	Ufos        int     `json:"ufos"`
	Bullets     int     `json:"bullets"`
	Duration    int     `json:"duration"`
	DeathReason *string `json:"death_reason"`
}

// GamePoint is one scatter-plot coordinate tuple.
type GamePoint struct {
	Score    int `json:"score"`
	Coins    int `json:"coins"`
	Ufos     int `json:"ufos"`
	Bullets  int `json:"bullets"`
	Duration int `json:"duration"`
}
