package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/validate"
)

const (
	// multipart framing on top of the file itself
	multipartOverhead = 64 << 10
	saveTimeout       = 30 * time.Second
)

// EditHandler exposes the visitor's edit modal. Every route sits behind RequireAdmin.
type EditHandler struct {
	maxUpload int64
}

func NewEditHandler(maxUploadBytes int64) *EditHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &EditHandler{maxUpload: maxUploadBytes}
}

func (h *EditHandler) Get(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)
	response.Data(w, http.StatusOK, dto.ToEditResp(v.Edit.Snapshot()))
}

// Open starts editing one of the events the visitor is looking at.
func (h *EditHandler) Open(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)

	var req dto.OpenEditReq
	if err := validate.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	ev, ok := v.List.Find(req.EventID)
	if !ok {
		response.Err(w, r, domain.ErrNotFound("event"))
		return
	}
	snap, err := v.Edit.Open(ev)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEditResp(snap))
}

func (h *EditHandler) Update(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)

	var req dto.UpdateDraftReq
	if err := validate.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	snap, err := v.Edit.UpdateFields(req.Fields())
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEditResp(snap))
}

func (h *EditHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)
	v.Edit.Cancel()
	response.Data(w, http.StatusOK, dto.ToEditResp(v.Edit.Snapshot()))
}

// SelectImage takes the multipart field "file" and opens the crop surface on it.
func (h *EditHandler) SelectImage(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			response.Err(w, r, domain.ErrImageTooLarge(h.maxUpload))
			return
		}
		response.Err(w, r, domain.ErrInvalidField("file", "invalid multipart body"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	f, _, err := r.FormFile("file")
	if err != nil {
		response.Err(w, r, domain.ErrMissingField("file"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		response.Err(w, r, domain.ErrInvalidField("file", "unreadable upload"))
		return
	}
	if int64(len(data)) > h.maxUpload {
		response.Err(w, r, domain.ErrImageTooLarge(h.maxUpload))
		return
	}

	view, err := v.Edit.SelectImage(data)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToCropResp(view))
}

func (h *EditHandler) AdjustCrop(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)

	var req dto.CropOpReq
	if err := validate.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	view, err := v.Edit.AdjustCrop(req.Op())
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToCropResp(view))
}

func (h *EditHandler) ConfirmCrop(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)
	snap, err := v.Edit.ConfirmCrop()
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEditResp(snap))
}

func (h *EditHandler) CancelCrop(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)
	snap, err := v.Edit.CancelCrop()
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEditResp(snap))
}

// Save runs detached from the request so a closed tab does not abort an upload
// half way; the actor stays on the context.
func (h *EditHandler) Save(w http.ResponseWriter, r *http.Request) {
	v := middleware.VisitorFrom(r)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), saveTimeout)
	defer cancel()

	ev, err := v.Edit.Save(ctx)
	if err != nil {
		middleware.EventSavesTotal.WithLabelValues(errorCode(err)).Inc()
		response.Err(w, r, err)
		return
	}
	middleware.EventSavesTotal.WithLabelValues("success").Inc()
	logger.Ctx(r.Context()).Info().Str("event_id", ev.ID).Str("visitor_id", v.ID).Msg("event saved")

	response.Data(w, http.StatusOK, dto.ToEventResp(ev))
}
