package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pinsync/pinsync/internal/httpserver/deps"
	"github.com/pinsync/pinsync/internal/httpserver/mw"
	"github.com/pinsync/pinsync/internal/logger"
	"github.com/pinsync/pinsync/internal/realtime"
)

// WS upgrades the connection and runs a realtime session for the
// authenticated owner: snapshot first, then reconciled change events until
// either side goes away.
func WS(d deps.Deps) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		// Session cookie auth makes the origin check redundant for CLI
		// clients, but browsers still must match the serving origin.
		CheckOrigin: func(r *http.Request) bool {
			return r.Header.Get("Origin") == "" || r.Header.Get("Origin") == d.BaseURL
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := mw.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		// Snapshot before subscribing would miss events in the gap, so
		// subscribe first: the reconcile store suppresses any overlap.
		sub := realtime.Subscribe(r.Context(), d.RedisClient, id.UserID, d.Logger)

		snapshot, err := d.Repo.ListByOwner(r.Context(), id.UserID)
		if err != nil {
			// Degrade to an empty list; the session still delivers live
			// changes and the next page load retries the snapshot.
			d.Logger.Error("snapshot query failed, starting empty session",
				logger.String("owner", id.UserID),
				logger.Error(err))
			snapshot = nil
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			sub.Close()
			d.Logger.Warn("websocket upgrade failed",
				logger.String("owner", id.UserID),
				logger.Error(err))
			return
		}

		d.Logger.Debug("realtime session started",
			logger.String("owner", id.UserID))
		realtime.NewSession(id.UserID, conn, sub, d.Logger).Run(r.Context(), snapshot)
		d.Logger.Debug("realtime session ended",
			logger.String("owner", id.UserID))
	}
}
