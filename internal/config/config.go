package config

import "os"

type Config struct {
	Port        string
	DatabaseURL string
	ExportDir   string
}

func Load() Config {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ExportDir:   getEnv("EXPORT_DIR", "export"),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
