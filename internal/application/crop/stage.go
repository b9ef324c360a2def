package crop

import (
	"fmt"
	"image"
	"sync"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// Limits guard against decompression bombs before a full decode.
type Limits struct {
	MaxWidth  int
	MaxHeight int
}

var DefaultLimits = Limits{MaxWidth: 8000, MaxHeight: 8000}

// View is what the client needs to draw the cropping surface.
type View struct {
	Preview     string `json:"preview"`
	ContentType string `json:"content_type"`
	ImageWidth  int    `json:"image_width"`
	ImageHeight int    `json:"image_height"`
	Crop        Rect   `json:"crop"`
}

type surface struct {
	img         image.Image
	contentType string
	preview     string
	rect        Rect
}

func (s *surface) view() View {
	b := s.img.Bounds()
	return View{
		Preview:     s.preview,
		ContentType: s.contentType,
		ImageWidth:  b.Dx(),
		ImageHeight: b.Dy(),
		Crop:        s.rect,
	}
}

// Stage holds at most one cropping surface at a time.
type Stage struct {
	previews PreviewStore
	limits   Limits

	mu  sync.Mutex
	cur *surface
}

func NewStage(previews PreviewStore, limits Limits) *Stage {
	if limits.MaxWidth <= 0 || limits.MaxHeight <= 0 {
		limits = DefaultLimits
	}
	return &Stage{previews: previews, limits: limits}
}

// Open starts a crop session for file. Any previous surface and preview are
// released first, even when file turns out to be unreadable.
func (st *Stage) Open(file []byte) (View, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.disposeLocked()

	mimeType, err := DetectType(file)
	if err != nil {
		return View{}, domain.ErrUnsupportedImage(err)
	}
	cfg, err := decodeConfig(file, mimeType)
	if err != nil {
		return View{}, domain.ErrUnsupportedImage(err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return View{}, domain.ErrUnsupportedImage(fmt.Errorf("empty image"))
	}
	if cfg.Width > st.limits.MaxWidth || cfg.Height > st.limits.MaxHeight {
		return View{}, domain.ErrUnsupportedImage(
			fmt.Errorf("image %dx%d exceeds %dx%d", cfg.Width, cfg.Height, st.limits.MaxWidth, st.limits.MaxHeight))
	}
	img, err := DecodeImage(file, mimeType)
	if err != nil {
		return View{}, domain.ErrUnsupportedImage(err)
	}

	b := img.Bounds()
	st.cur = &surface{
		img:         img,
		contentType: mimeType,
		preview:     st.previews.Put(file, mimeType),
		rect:        InitialRect(b.Dx(), b.Dy()),
	}
	return st.cur.view(), nil
}

// Active reports whether a surface is open.
func (st *Stage) Active() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cur != nil
}

func (st *Stage) View() (View, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.cur == nil {
		return View{}, false
	}
	return st.cur.view(), true
}

// Adjust applies one interactive change to the crop box.
func (st *Stage) Adjust(op Op) (View, error) {
	if !validOp(op.Kind) {
		return View{}, domain.ErrInvalidField("action", "unknown crop action")
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.cur == nil {
		return View{}, domain.ErrInvalidState("no crop in progress")
	}
	b := st.cur.img.Bounds()
	st.cur.rect = op.apply(st.cur.rect, b.Dx(), b.Dy())
	return st.cur.view(), nil
}

// Confirm renders the current selection and tears the surface down.
func (st *Stage) Confirm() (Blob, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.cur == nil {
		return Blob{}, domain.ErrInvalidState("no crop in progress")
	}
	blob, err := Render(st.cur.img, st.cur.rect)
	if err != nil {
		return Blob{}, err
	}
	st.disposeLocked()
	return blob, nil
}

// Cancel tears the surface down without producing a blob. Safe to call when closed.
func (st *Stage) Cancel() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.disposeLocked()
}

func (st *Stage) disposeLocked() {
	if st.cur == nil {
		return
	}
	st.previews.Release(st.cur.preview)
	st.cur = nil
}
