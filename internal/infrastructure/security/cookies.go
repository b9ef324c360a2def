package security

import (
	"net/http"
	"time"
)

const (
	VisitorCookieName     = "visitor"
	AccessTokenCookieName = "access_token"

	hostPrefix = "__Host-"
)

func cookieName(base string, secure bool) string {
	if secure {
		return hostPrefix + base
	}
	return base
}

func setCookie(w http.ResponseWriter, base, value string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(base, secure),
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// readCookie prefers the __Host- variant and falls back to the plain name used over plain HTTP in dev.
func readCookie(r *http.Request, base string) string {
	if c, err := r.Cookie(hostPrefix + base); err == nil {
		return c.Value
	}
	if c, err := r.Cookie(base); err == nil {
		return c.Value
	}
	return ""
}

// SetVisitor issues the visitor id as a session cookie.
func SetVisitor(w http.ResponseWriter, id string, secure bool) {
	setCookie(w, VisitorCookieName, id, 0, secure)
}

func ReadVisitor(r *http.Request) string { return readCookie(r, VisitorCookieName) }

func SetAccessToken(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	setCookie(w, AccessTokenCookieName, token, int(ttl.Seconds()), secure)
}

func ClearAccessToken(w http.ResponseWriter, secure bool) {
	setCookie(w, AccessTokenCookieName, "", -1, secure)
}

func ReadAccessToken(r *http.Request) string { return readCookie(r, AccessTokenCookieName) }
