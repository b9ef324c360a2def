package edit

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/crop"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateCropping State = "cropping"
	StateSaving   State = "saving"
)

type Deps struct {
	Blobs     BlobStore
	Records   RecordStore
	Publisher Publisher
	Clock     Clock
	Stage     *crop.Stage
	Log       zerolog.Logger
}

// Snapshot is a copy of the workflow state safe to hand to the view layer.
type Snapshot struct {
	State State
	Draft *Draft
	Crop  *crop.View
}

// Workflow drives the edit modal of one visitor.
//
// Every open/close bumps gen; a save remembers the gen it started with and its
// completion only touches the draft and state when gen is unchanged, so a draft
// discarded while its save was in flight is never resurrected or mutated. A
// committed update always refreshes the list and is published.
type Workflow struct {
	blobs   BlobStore
	records RecordStore
	pub     Publisher
	clock   Clock
	stage   *crop.Stage
	log     zerolog.Logger

	onSaved func(ctx context.Context)

	mu    sync.Mutex
	state State
	draft *Draft
	gen   uint64
}

func New(d Deps, onSaved func(ctx context.Context)) *Workflow {
	if d.Publisher == nil {
		d.Publisher = NoopPublisher{}
	}
	return &Workflow{
		blobs:   d.Blobs,
		records: d.Records,
		pub:     d.Publisher,
		clock:   d.Clock,
		stage:   d.Stage,
		log:     d.Log,
		onSaved: onSaved,
		state:   StateClosed,
	}
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{State: w.state}
	if w.draft != nil {
		d := *w.draft
		s.Draft = &d
	}
	if w.state == StateCropping {
		if v, ok := w.stage.View(); ok {
			s.Crop = &v
		}
	}
	return s
}

// Open starts editing ev.
func (w *Workflow) Open(ev domain.Event) (Snapshot, error) {
	w.mu.Lock()
	if w.state != StateClosed {
		w.mu.Unlock()
		return Snapshot{}, domain.ErrInvalidState("an event is already being edited")
	}
	d := NewDraft(ev)
	w.draft = &d
	w.gen++
	w.state = StateOpen
	w.mu.Unlock()

	return w.Snapshot(), nil
}

func (w *Workflow) UpdateFields(f Fields) (Snapshot, error) {
	w.mu.Lock()
	if w.state != StateOpen {
		w.mu.Unlock()
		return Snapshot{}, domain.ErrInvalidState("editor is not open")
	}
	err := w.draft.apply(f)
	w.mu.Unlock()
	if err != nil {
		return Snapshot{}, err
	}
	return w.Snapshot(), nil
}

// SelectImage hands a raw file to the crop stage. The draft is untouched until the crop is confirmed.
func (w *Workflow) SelectImage(file []byte) (crop.View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateOpen {
		return crop.View{}, domain.ErrInvalidState("editor is not open")
	}
	v, err := w.stage.Open(file)
	if err != nil {
		return crop.View{}, err
	}
	w.state = StateCropping
	return v, nil
}

func (w *Workflow) AdjustCrop(op crop.Op) (crop.View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateCropping {
		return crop.View{}, domain.ErrInvalidState("no crop in progress")
	}
	return w.stage.Adjust(op)
}

// ConfirmCrop stores the cropped blob as the pending image and previews it locally.
func (w *Workflow) ConfirmCrop() (Snapshot, error) {
	w.mu.Lock()
	if w.state != StateCropping {
		w.mu.Unlock()
		return Snapshot{}, domain.ErrInvalidState("no crop in progress")
	}
	blob, err := w.stage.Confirm()
	if err != nil {
		w.mu.Unlock()
		return Snapshot{}, err
	}
	w.draft.pending = &blob
	w.draft.ImagePreview = blob.DataURL()
	w.state = StateOpen
	w.mu.Unlock()

	return w.Snapshot(), nil
}

// CancelCrop drops the selected file; the draft keeps whatever image it had.
func (w *Workflow) CancelCrop() (Snapshot, error) {
	w.mu.Lock()
	if w.state != StateCropping {
		w.mu.Unlock()
		return Snapshot{}, domain.ErrInvalidState("no crop in progress")
	}
	w.stage.Cancel()
	w.state = StateOpen
	w.mu.Unlock()

	return w.Snapshot(), nil
}

// Cancel discards the draft without any network call. A save in flight keeps
// running; when it lands it only refreshes the list and publishes.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateClosed {
		return
	}
	w.stage.Cancel()
	w.draft = nil
	w.gen++
	w.state = StateClosed
}

// Save uploads the pending image (if any), then writes the record.
// On any failure the record is left untouched and the editor returns to open.
func (w *Workflow) Save(ctx context.Context) (domain.Event, error) {
	w.mu.Lock()
	switch w.state {
	case StateSaving:
		w.mu.Unlock()
		return domain.Event{}, domain.ErrSaveInFlight()
	case StateCropping:
		w.mu.Unlock()
		return domain.Event{}, domain.ErrInvalidState("finish cropping before saving")
	case StateClosed:
		w.mu.Unlock()
		return domain.Event{}, domain.ErrInvalidState("editor is not open")
	}
	d := *w.draft
	gen := w.gen
	w.state = StateSaving
	w.mu.Unlock()

	patch, err := d.submit(d.original.ImageURL)
	if err != nil {
		w.backToOpen(gen)
		return domain.Event{}, err
	}

	var key string
	if d.pending != nil {
		key = StorageKey(d.EventID, w.clock.Now(), d.pending.ContentType)
		if err := w.blobs.Upload(ctx, key, d.pending.ContentType, d.pending.Data); err != nil {
			w.backToOpen(gen)
			return domain.Event{}, asCollaboratorError(err, domain.ErrUpload)
		}
		url := w.blobs.PublicURL(key)
		patch.ImageURL = &url
	}

	if err := w.records.UpdateEvent(ctx, d.EventID, patch); err != nil {
		if key != "" {
			if rmErr := w.blobs.Remove(context.WithoutCancel(ctx), key); rmErr != nil {
				w.log.Warn().Err(rmErr).Str("key", key).Msg("orphan image not removed")
			}
		}
		w.backToOpen(gen)
		return domain.Event{}, asCollaboratorError(err, domain.ErrUpdate)
	}

	updated := d.original.Apply(patch)

	w.mu.Lock()
	stale := w.gen != gen
	if !stale {
		w.draft = nil
		w.gen++
		w.state = StateClosed
	}
	w.mu.Unlock()

	// the record is committed either way, so the list and subscribers still hear about it
	if stale {
		w.log.Info().Str("event_id", d.EventID).Msg("save finished after editor was closed")
	}

	if w.onSaved != nil {
		w.onSaved(ctx)
	}
	if err := w.pub.PublishEventUpdated(ctx, updated); err != nil {
		w.log.Warn().Err(err).Str("event_id", updated.ID).Msg("publish event.updated failed")
	}
	return updated, nil
}

func (w *Workflow) backToOpen(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen == gen && w.state == StateSaving {
		w.state = StateOpen
	}
}

// asCollaboratorError keeps typed domain refusals (forbidden, not found) and wraps anything else.
func asCollaboratorError(err error, wrap func(error) *domain.Error) error {
	switch domain.KindOf(err) {
	case domain.KindForbidden, domain.KindNotFound, domain.KindAuth, domain.KindValidation:
		return err
	}
	return wrap(err)
}
