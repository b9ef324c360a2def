package crop

import "math"

// AspectRatio is width / height of every crop box.
const AspectRatio = 2.0

// MinWidth keeps the box at least one output-source pixel tall.
const MinWidth = 2.0

// Rect is a crop box in source-image pixel coordinates (origin at the image's top-left).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// InitialRect returns the largest 2:1 box that fits the image, centered.
func InitialRect(imgW, imgH int) Rect {
	return clampRect(Rect{Width: math.Inf(1)}, imgW, imgH, true)
}

// maxWidth is the widest 2:1 box that still fits inside the image.
func maxWidth(imgW, imgH int) float64 {
	return math.Min(float64(imgW), float64(imgH)*AspectRatio)
}

// clampRect forces r to the aspect ratio and keeps it inside the image.
// With center set, the box is re-centred on the image instead of keeping its position.
func clampRect(r Rect, imgW, imgH int, center bool) Rect {
	maxW := maxWidth(imgW, imgH)
	w := r.Width
	if math.IsNaN(w) || w > maxW {
		w = maxW
	}
	if w < MinWidth {
		w = math.Min(MinWidth, maxW)
	}
	h := w / AspectRatio

	x, y := r.X, r.Y
	if center {
		x = (float64(imgW) - w) / 2
		y = (float64(imgH) - h) / 2
	}
	x = clamp(x, 0, float64(imgW)-w)
	y = clamp(y, 0, float64(imgH)-h)

	return Rect{X: x, Y: y, Width: w, Height: h}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type OpKind string

const (
	OpMove   OpKind = "move"   // drag the box
	OpPan    OpKind = "pan"    // drag outside the box: the image moves under it
	OpResize OpKind = "resize" // new width around the box centre
	OpSet    OpKind = "set"    // absolute box from the client
)

// Op is one interactive adjustment of the crop box.
type Op struct {
	Kind  OpKind
	DX    float64
	DY    float64
	X     float64
	Y     float64
	Width float64
}

func validOp(k OpKind) bool {
	switch k {
	case OpMove, OpPan, OpResize, OpSet:
		return true
	}
	return false
}

// apply returns the box after op; the result always satisfies the aspect and bounds constraints.
func (op Op) apply(r Rect, imgW, imgH int) Rect {
	switch op.Kind {
	case OpMove:
		r.X += op.DX
		r.Y += op.DY
	case OpPan:
		r.X -= op.DX
		r.Y -= op.DY
	case OpResize:
		cx, cy := r.X+r.Width/2, r.Y+r.Height/2
		w := math.Min(op.Width, maxWidth(imgW, imgH))
		if w < MinWidth {
			w = MinWidth
		}
		r = Rect{X: cx - w/2, Y: cy - w/AspectRatio/2, Width: w}
	case OpSet:
		r = Rect{X: op.X, Y: op.Y, Width: op.Width}
	}
	return clampRect(r, imgW, imgH, false)
}
