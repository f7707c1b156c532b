package handlers

import (
	"net/http"

	"github.com/pinsync/pinsync/internal/auth"
	"github.com/pinsync/pinsync/internal/httpserver/deps"
	"github.com/pinsync/pinsync/internal/logger"
)

// Login starts the sign-in redirect flow.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := d.Google.BeginLogin(w)
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
	}
}

// Callback completes the sign-in redirect flow: verify state, redeem the
// one-time code, check the allowlist, and set the session cookie. Failures
// bounce back to the landing page rather than rendering an error page.
func Callback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Google.VerifyState(r); err != nil {
			d.Logger.Warn("oauth state check failed",
				logger.Error(err))
			http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
			return
		}

		code := r.FormValue("code")
		if code == "" {
			http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
			return
		}

		user, err := d.Google.Exchange(r.Context(), code)
		if err != nil {
			d.Logger.Error("oauth code exchange failed",
				logger.Error(err))
			http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
			return
		}

		if !emailAllowed(user.Email, d.AllowedEmails) {
			d.Logger.Warn("sign-in refused, email not in allowlist",
				logger.String("email", user.Email))
			writeError(w, http.StatusForbidden, "account not allowed")
			return
		}

		token, expires, err := d.Sessions.Issue(auth.Identity{UserID: user.ID, Email: user.Email})
		if err != nil {
			d.Logger.Error("failed to issue session",
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "sign-in failed")
			return
		}
		d.Sessions.SetCookie(w, token, expires)

		d.Logger.Info("sign-in completed",
			logger.String("email", user.Email))
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
	}
}

// Logout clears the session cookie.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Sessions.ClearCookie(w)
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
	}
}

func emailAllowed(email string, allowlist []string) bool {
	if len(allowlist) == 0 {
		return true
	}
	for _, allowed := range allowlist {
		if allowed == email {
			return true
		}
	}
	return false
}
