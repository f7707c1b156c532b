package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/pinsync/pinsync/internal/httpserver/deps"
	"github.com/pinsync/pinsync/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type homeData struct {
	SignedIn bool
	Email    string
}

// Home renders the landing page for anonymous visitors and the bookmark
// view shell for signed-in users. The shell fetches its snapshot and live
// updates over /ws; this handler only decides which page to serve.
func Home(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := homeData{}
		if id, err := d.Sessions.FromRequest(r); err == nil {
			data.SignedIn = true
			data.Email = id.Email
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTemplates.ExecuteTemplate(w, "home.html", data); err != nil {
			d.Logger.Error("failed to render home page",
				logger.Error(err))
		}
	}
}
