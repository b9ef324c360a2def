package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/dto"
)

func TestSessionHandler(t *testing.T) {
	t.Run("anonymous_by_default", func(t *testing.T) {
		h := newHarness(t)
		rr := h.json(http.MethodGet, "/api/session", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var s dto.SessionResp
		decodeData(t, rr, &s)
		assert.False(t, s.Authenticated)
		assert.Nil(t, s.User)
		assert.Contains(t, h.cookies, "visitor")
	})

	t.Run("login_sets_token_cookie_and_admin_flag", func(t *testing.T) {
		h := newHarness(t)
		rr := h.json(http.MethodPost, "/api/session/login", `{"email":"admin@example.com","password":"admin1234"}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var s dto.SessionResp
		decodeData(t, rr, &s)
		assert.True(t, s.Authenticated)
		assert.True(t, s.IsAdmin)
		require.Contains(t, h.cookies, "access_token")
		assert.Equal(t, "tok-admin", h.cookies["access_token"].Value)
	})

	t.Run("non_admin_user", func(t *testing.T) {
		h := newHarness(t)
		rr := h.json(http.MethodPost, "/api/session/login", `{"email":"user@example.com","password":"user1234"}`)
		require.Equal(t, http.StatusOK, rr.Code)

		var s dto.SessionResp
		decodeData(t, rr, &s)
		assert.True(t, s.Authenticated)
		assert.False(t, s.IsAdmin)
	})

	t.Run("wrong_password_is_401", func(t *testing.T) {
		h := newHarness(t)
		rr := h.json(http.MethodPost, "/api/session/login", `{"email":"admin@example.com","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "invalid_credentials", errorCodeOf(t, rr))
		assert.NotContains(t, h.cookies, "access_token")
	})

	t.Run("missing_field_is_400", func(t *testing.T) {
		h := newHarness(t)
		rr := h.json(http.MethodPost, "/api/session/login", `{"email":"admin@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "missing_field", errorCodeOf(t, rr))
	})

	t.Run("logout_clears_session_and_cookie", func(t *testing.T) {
		h := newHarness(t)
		h.loginAdmin()

		rr := h.json(http.MethodPost, "/api/session/logout", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var s dto.SessionResp
		decodeData(t, rr, &s)
		assert.False(t, s.Authenticated)
		assert.False(t, s.IsAdmin)
		assert.NotContains(t, h.cookies, "access_token")
	})

	t.Run("session_survives_process_memory_via_cookie", func(t *testing.T) {
		h := newHarness(t)
		h.loginAdmin()
		// a different browser window on the same account: no visitor cookie yet
		delete(h.cookies, "visitor")

		var s dto.SessionResp
		decodeData(t, h.json(http.MethodGet, "/api/session", ""), &s)
		assert.True(t, s.IsAdmin)
	})
}
