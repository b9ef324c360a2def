package middleware

import (
	"net/http"
	"strings"
)

// SecurityHeaders sets the page policy. imgSources are extra origins event images may
// be served from (the blob store's public base URL).
func SecurityHeaders(imgSources ...string) func(http.Handler) http.Handler {
	img := []string{"'self'", "data:", "blob:", "https:"}
	for _, s := range imgSources {
		if s = strings.TrimSpace(s); s != "" {
			img = append(img, s)
		}
	}
	csp := "default-src 'self'; img-src " + strings.Join(img, " ") +
		"; script-src 'self'; style-src 'self'; object-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'self'"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", csp)
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=(), usb=()")

			next.ServeHTTP(w, r)
		})
	}
}
