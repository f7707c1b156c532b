package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pinsync/pinsync/internal/httpserver/deps"
	"github.com/pinsync/pinsync/internal/httpserver/handlers"
	"github.com/pinsync/pinsync/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	r.With(mw.RequireAuth(d.Sessions)).Post("/api/admin/purge", handlers.Purge(d))
}
