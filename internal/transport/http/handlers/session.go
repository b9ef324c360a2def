package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/validate"
)

type SessionHandler struct {
	secure   bool
	tokenTTL time.Duration
}

// NewSessionHandler: tokenTTL is the cookie lifetime used when the provider does not report an expiry.
func NewSessionHandler(secureCookies bool, tokenTTL time.Duration) *SessionHandler {
	return &SessionHandler{secure: secureCookies, tokenTTL: tokenTTL}
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)
	response.Data(w, http.StatusOK, dto.ToSessionResp(v.Gate.Session()))
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)

	var req dto.LoginReq
	if err := validate.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	if err := v.Gate.Login(r.Context(), req.Email, req.Password); err != nil {
		middleware.LoginAttemptsTotal.WithLabelValues(errorCode(err)).Inc()
		response.Err(w, r, err)
		return
	}
	middleware.LoginAttemptsTotal.WithLabelValues("success").Inc()

	if creds, ok := v.Auth.Credentials(); ok {
		ttl := h.tokenTTL
		if !creds.ExpiresAt.IsZero() {
			ttl = time.Until(creds.ExpiresAt)
		}
		security.SetAccessToken(w, creds.AccessToken, ttl, h.secure)
	}

	response.Data(w, http.StatusOK, dto.ToSessionResp(v.Gate.Session()))
}

// Logout always forgets the local session; a provider failure is only logged.
// The SIGNED_OUT notification closes any open edit.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)

	if err := v.Gate.Logout(r.Context()); err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Str("visitor_id", v.ID).Msg("provider sign out failed")
	}
	security.ClearAccessToken(w, h.secure)

	response.Data(w, http.StatusOK, dto.ToSessionResp(v.Gate.Session()))
}

func errorCode(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "internal_error"
}
