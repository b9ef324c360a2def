package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/dto"
)

func TestEventsHandler_List(t *testing.T) {
	t.Run("keeps_store_order", func(t *testing.T) {
		h := newHarness(t)
		rr := h.json(http.MethodGet, "/api/events", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var out dto.EventsResp
		decodeData(t, rr, &out)
		require.Len(t, out.Events, 2)
		assert.Equal(t, "e1", out.Events[0].ID)
		assert.Equal(t, "2024-03-15T18:30:00", out.Events[0].EventDate)
		assert.Nil(t, out.Events[0].ImageURL)
	})

	t.Run("fetch_failure_is_502", func(t *testing.T) {
		h := newHarness(t)
		h.store.listErr = errBoom

		rr := h.json(http.MethodGet, "/api/events", "")
		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Equal(t, "events_fetch_failed", errorCodeOf(t, rr))
	})

	t.Run("refresh_recovers", func(t *testing.T) {
		h := newHarness(t)
		h.store.listErr = errBoom
		require.Equal(t, http.StatusBadGateway, h.json(http.MethodGet, "/api/events", "").Code)

		h.store.listErr = nil
		// without refresh the held failure stays
		assert.Equal(t, http.StatusBadGateway, h.json(http.MethodGet, "/api/events", "").Code)
		assert.Equal(t, http.StatusOK, h.json(http.MethodGet, "/api/events?refresh=1", "").Code)
	})
}

func TestPageHandler_Index(t *testing.T) {
	t.Run("anonymous_page", func(t *testing.T) {
		h := newHarness(t)
		rr := h.do(http.MethodGet, "/", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, "Concierto")
		assert.Contains(t, body, "vie, 15 mar, 18:30")
		assert.Contains(t, body, `id="login-form"`)
		assert.NotContains(t, body, `data-action="edit"`)
	})

	t.Run("admin_page_has_edit_buttons", func(t *testing.T) {
		h := newHarness(t)
		h.loginAdmin()
		body := h.do(http.MethodGet, "/", nil, "").Body.String()
		assert.Contains(t, body, "👑 Admin")
		assert.Contains(t, body, `data-event-id="e2"`)
	})

	t.Run("failed_fetch_state", func(t *testing.T) {
		h := newHarness(t)
		h.store.listErr = errBoom
		body := h.do(http.MethodGet, "/", nil, "").Body.String()
		assert.Contains(t, body, "No se pudieron cargar los eventos.")
	})
}
