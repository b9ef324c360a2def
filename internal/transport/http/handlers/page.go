package handlers

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/edit"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/web"
)

type PageHandler struct{}

func NewPageHandler() *PageHandler { return &PageHandler{} }

// Index renders the listing page. The first visit loads the list; later visits show
// the visitor's held copy, which a successful save refreshes.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)

	sess := v.Gate.Session()
	list := v.List.Load(r.Context())

	ed := v.Edit.Snapshot()
	if !sess.IsAdmin {
		ed = edit.Snapshot{State: edit.StateClosed}
	}

	if err := web.Render(w, http.StatusOK, web.NewPage(sess, list, ed)); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("render page failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
