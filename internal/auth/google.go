package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/pinsync/pinsync/internal/utils"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleUser is the subset of the userinfo response we use.
type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// Google drives the OAuth redirect flow against Google's identity provider.
type Google struct {
	oauth  *oauth2.Config
	secure bool
}

func NewGoogle(clientID, clientSecret, redirectURL string, secure bool) *Google {
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		secure: secure,
	}
}

// BeginLogin sets the CSRF state cookie and returns the provider URL to
// redirect the browser to.
func (g *Google) BeginLogin(w http.ResponseWriter) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return g.oauth.AuthCodeURL(state)
}

// VerifyState compares the callback state against the cookie set at login.
func (g *Google) VerifyState(r *http.Request) error {
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		return fmt.Errorf("missing oauth state cookie: %w", err)
	}
	if r.FormValue("state") != cookie.Value {
		return fmt.Errorf("oauth state mismatch")
	}
	return nil
}

// Exchange redeems the one-time authorization code and fetches the user's
// profile. The code is consumed here and never processed again.
func (g *Google) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	client := g.oauth.Client(ctx, token)
	resp, err := client.Get(userinfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned %s", resp.Status)
	}

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("userinfo response missing subject")
	}

	return &user, nil
}
