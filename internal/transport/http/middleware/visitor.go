package middleware

import (
	"context"
	"net/http"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/visitor"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/infrastructure/security"
	appCtx "github.com/baechuer/real-time-ressys/services/listing-service/internal/pkg/context"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/response"
)

type visitorKey struct{}

// Visitors binds every request to its visitor through the visitor cookie.
type Visitors struct {
	hub    *visitor.Hub
	secure bool
}

func NewVisitors(hub *visitor.Hub, secureCookies bool) *Visitors {
	return &Visitors{hub: hub, secure: secureCookies}
}

func (m *Visitors) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := security.ReadVisitor(r)
		tok := security.ReadAccessToken(r)

		v, _ := m.hub.Acquire(r.Context(), id, tok)
		if v.ID != id {
			security.SetVisitor(w, v.ID, m.secure)
		}
		// the provider rejected the cookie's token
		if tok != "" && v.Auth.AccessToken() == "" {
			security.ClearAccessToken(w, m.secure)
		}

		ctx := appCtx.WithActor(r.Context(), v.Auth.Actor())
		ctx = context.WithValue(ctx, visitorKey{}, v)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VisitorFrom returns nil outside Attach.
func VisitorFrom(r *http.Request) *visitor.Visitor {
	v, _ := r.Context().Value(visitorKey{}).(*visitor.Visitor)
	return v
}

// RequireAdmin lets the request through only for a visitor whose session is admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := VisitorFrom(r)
		if v == nil || !v.Gate.Session().IsAdmin {
			response.Err(w, r, domain.ErrAdminRequired())
			return
		}
		next.ServeHTTP(w, r)
	})
}
