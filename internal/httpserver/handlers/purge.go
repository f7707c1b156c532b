package handlers

import (
	"net/http"

	"github.com/pinsync/pinsync/internal/httpserver/deps"
	"github.com/pinsync/pinsync/internal/logger"
)

// Purge triggers an immediate janitor run, reclaiming soft-deleted rows
// past the retention threshold without waiting for the next tick.
func Purge(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.PurgeTrigger <- struct{}{}:
			d.Logger.Info("manual purge triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "purge triggered"})
		default:
			d.Logger.Warn("purge already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeError(w, http.StatusTooManyRequests, "purge already in progress")
		}
	}
}
