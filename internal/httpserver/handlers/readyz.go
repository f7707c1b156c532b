package handlers

import (
	"net/http"

	"github.com/pinsync/pinsync/internal/httpserver/deps"
	"github.com/pinsync/pinsync/internal/logger"
)

type readyzResponse struct {
	Ready    bool   `json:"ready"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Readyz reports whether both backing stores answer a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{Ready: true, Database: "ok", Redis: "ok"}

		if err := d.Repo.Ping(r.Context()); err != nil {
			d.Logger.Warn("readyz: database ping failed",
				logger.Error(err))
			resp.Ready = false
			resp.Database = "unavailable"
		}
		if err := d.RedisClient.Ping(r.Context()).Err(); err != nil {
			d.Logger.Warn("readyz: redis ping failed",
				logger.Error(err))
			resp.Ready = false
			resp.Redis = "unavailable"
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
