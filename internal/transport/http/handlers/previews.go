package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/crop"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/response"
)

type PreviewSource interface {
	Get(handle string) (crop.Preview, bool)
}

// PreviewsHandler serves the temporary image behind a crop surface. A handle stops
// resolving as soon as its crop is confirmed or cancelled.
type PreviewsHandler struct {
	src PreviewSource
}

func NewPreviewsHandler(src PreviewSource) *PreviewsHandler {
	return &PreviewsHandler{src: src}
}

func (h *PreviewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.src.Get(chi.URLParam(r, "handle"))
	if !ok {
		response.Err(w, r, domain.ErrNotFound("preview"))
		return
	}
	w.Header().Set("Content-Type", p.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(p.Data)))
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(p.Data)
}
