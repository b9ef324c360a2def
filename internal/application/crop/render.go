package crop

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	"golang.org/x/image/draw"
)

// Output contract of the crop stage.
const (
	OutputWidth  = 400
	OutputHeight = 200
	JPEGQuality  = 80 // 0.8
	OutputType   = "image/jpeg"
)

// Blob is an encoded image ready for upload.
type Blob struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// DataURL renders the blob as a data: URL for local preview.
func (b Blob) DataURL() string {
	return "data:" + b.ContentType + ";base64," + base64.StdEncoding.EncodeToString(b.Data)
}

// sourceRect converts a crop box into integer pixels of img, never empty.
func sourceRect(img image.Image, r Rect) image.Rectangle {
	b := img.Bounds()
	x0 := b.Min.X + int(math.Round(r.X))
	y0 := b.Min.Y + int(math.Round(r.Y))
	x1 := b.Min.X + int(math.Round(r.X+r.Width))
	y1 := b.Min.Y + int(math.Round(r.Y+r.Height))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return image.Rect(x0, y0, x1, y1).Intersect(b)
}

// Render scales the selected region of img to the fixed output size and encodes it as JPEG.
func Render(img image.Image, r Rect) (Blob, error) {
	sr := sourceRect(img, r)
	if sr.Empty() {
		return Blob{}, fmt.Errorf("crop region outside image")
	}

	dst := image.NewRGBA(image.Rect(0, 0, OutputWidth, OutputHeight))
	// transparent source pixels flatten onto white
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, sr, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return Blob{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return Blob{
		Data:        buf.Bytes(),
		ContentType: OutputType,
		Width:       OutputWidth,
		Height:      OutputHeight,
	}, nil
}
