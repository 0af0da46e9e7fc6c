package handlers

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// CookieTTLs carries the transport-level cookie lifetimes. They are
// configured independently of the token lifetimes but must never exceed them.
type CookieTTLs struct {
	Access  time.Duration
	Refresh time.Duration
}

func setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string, ttls CookieTTLs) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookieName,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttls.Access.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttls.Refresh.Seconds()),
	})
}

// clearAuthCookies expires both cookies. Logout additionally clears
// non-http-only variants for clients that set their own copies.
func clearAuthCookies(w http.ResponseWriter, includeScriptVariants bool) {
	names := []string{AccessCookieName, RefreshCookieName}
	for _, name := range names {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
		if includeScriptVariants {
			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    "",
				Path:     "/",
				HttpOnly: false,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   -1,
			})
		}
	}
}

func cookieValue(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
