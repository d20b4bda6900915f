package server

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestLogger tags each request with a short id so concurrent request
// logs can be told apart.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()[:8]
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[HTTP] %s %s %s (%s)\n", id, r.Method, r.URL.Path, time.Since(start))
	})
}
