package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pinsync/pinsync/internal/httpserver/deps"
	"github.com/pinsync/pinsync/internal/httpserver/handlers"
	"github.com/pinsync/pinsync/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.With(mw.RequireAuth(d.Sessions)).Route("/api/bookmarks", func(r chi.Router) {
		r.Get("/", handlers.ListBookmarks(d))
		r.Post("/", handlers.CreateBookmark(d))
		r.Delete("/{id}", handlers.DeleteBookmark(d))
		r.Post("/import", handlers.ImportBookmarks(d))
		r.Get("/export", handlers.ExportBookmarks(d))
	})
}
