package handlers

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/response"
)

type EventsHandler struct{}

func NewEventsHandler() *EventsHandler { return &EventsHandler{} }

// List answers the visitor's list; ?refresh=1 re-fetches first.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)

	snap := v.List.Load(r.Context())
	if r.URL.Query().Get("refresh") == "1" {
		snap = v.List.Refresh(r.Context())
	}
	if snap.Failed {
		response.Err(w, r, domain.ErrFetchEvents(nil))
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventsResp(snap.Events))
}
