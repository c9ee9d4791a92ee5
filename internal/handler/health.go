package handler

import (
	"log/slog"
	"net/http"
)

// Pinger is anything that can report whether it is reachable.
type Pinger interface {
	Ping() error
}

// HandleHealth returns 200 {"status":"ok"} when the database answers and
// 503 otherwise.
//
// HTTP: GET /healthz
func HandleHealth(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			logger.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
