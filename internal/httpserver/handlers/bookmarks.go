package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pinsync/pinsync/internal/domain"
	"github.com/pinsync/pinsync/internal/httpserver/deps"
	"github.com/pinsync/pinsync/internal/httpserver/mw"
	"github.com/pinsync/pinsync/internal/importer"
	"github.com/pinsync/pinsync/internal/logger"
	"github.com/pinsync/pinsync/internal/store/sqlite"
)

// ListBookmarks serves the owner-scoped snapshot, newest first.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := mw.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		bookmarks, err := d.Repo.ListByOwner(r.Context(), id.UserID)
		if err != nil {
			d.Logger.Error("failed to load snapshot",
				logger.String("owner", id.UserID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load bookmarks")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"bookmarks": bookmarks})
	}
}

type createRequest struct {
	Title     string `json:"title"`
	TargetURL string `json:"target_url"`
}

// CreateBookmark handles a creation intent: validate, persist, publish the
// insert event, and return the fully-populated record. There is no
// optimistic insert; the caller merges the response on success.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := mw.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := domain.ValidateNew(req.Title, req.TargetURL); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		b, err := d.Repo.Insert(r.Context(), id.UserID, req.Title, req.TargetURL)
		if err != nil {
			d.Logger.Error("failed to create bookmark",
				logger.String("owner", id.UserID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to create bookmark")
			return
		}

		// Fan-out is best effort: the record is durable, other sessions
		// catch up on their next snapshot if the event is lost.
		if err := d.Publisher.Publish(r.Context(), domain.NewInsertEvent(b)); err != nil {
			d.Logger.Warn("failed to publish insert event",
				logger.String("id", b.ID),
				logger.Error(err))
		}

		writeJSON(w, http.StatusCreated, b)
	}
}

// DeleteBookmark handles a deletion intent. The UI removes the record
// optimistically before this call; a failure here surfaces as a transient
// notice and is not rolled back client-side.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := mw.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		bookmarkID := chi.URLParam(r, "id")
		if bookmarkID == "" {
			writeError(w, http.StatusBadRequest, "missing bookmark id")
			return
		}

		err := d.Repo.Delete(r.Context(), id.UserID, bookmarkID)
		if errors.Is(err, sqlite.ErrNotFound) {
			// Already gone (double delete, another session won the race, or
			// a foreign id). Either way the record is not in the owner's
			// view; report it as not found without publishing.
			writeError(w, http.StatusNotFound, "bookmark not found")
			return
		}
		if err != nil {
			d.Logger.Error("failed to delete bookmark",
				logger.String("owner", id.UserID),
				logger.String("id", bookmarkID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to delete bookmark")
			return
		}

		if err := d.Publisher.Publish(r.Context(), domain.NewDeleteEvent(id.UserID, bookmarkID)); err != nil {
			d.Logger.Warn("failed to publish delete event",
				logger.String("id", bookmarkID),
				logger.Error(err))
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type importResponse struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Reasons []string `json:"reasons,omitempty"`
}

// ImportBookmarks creates records from a YAML document. Each created record
// is published as a normal insert event, so open sessions pick imports up
// live.
func ImportBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := mw.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		res, err := importer.Parse(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		resp := importResponse{Skipped: len(res.Skipped)}
		for _, s := range res.Skipped {
			resp.Reasons = append(resp.Reasons, s.Entry.URL+": "+s.Reason)
		}

		for _, entry := range res.Accepted {
			b, err := d.Repo.Insert(r.Context(), id.UserID, entry.Title, entry.URL)
			if err != nil {
				d.Logger.Error("failed to import bookmark",
					logger.String("owner", id.UserID),
					logger.String("url", entry.URL),
					logger.Error(err))
				resp.Skipped++
				resp.Reasons = append(resp.Reasons, entry.URL+": storage failure")
				continue
			}
			resp.Created++

			if err := d.Publisher.Publish(r.Context(), domain.NewInsertEvent(b)); err != nil {
				d.Logger.Warn("failed to publish insert event",
					logger.String("id", b.ID),
					logger.Error(err))
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// ExportBookmarks renders the owner's live bookmarks as a YAML document
// suitable for re-import.
func ExportBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := mw.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		bookmarks, err := d.Repo.ListByOwner(r.Context(), id.UserID)
		if err != nil {
			d.Logger.Error("failed to load bookmarks for export",
				logger.String("owner", id.UserID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to export bookmarks")
			return
		}
		if len(bookmarks) == 0 {
			writeError(w, http.StatusNotFound, "no bookmarks to export")
			return
		}

		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Content-Disposition", `attachment; filename="bookmarks.yaml"`)
		if err := importer.Render(w, bookmarks); err != nil {
			d.Logger.Error("failed to render export",
				logger.String("owner", id.UserID),
				logger.Error(err))
		}
	}
}
