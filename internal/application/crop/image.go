package crop

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/webp"
)

// Source formats accepted by the crop stage, keyed by magic bytes.
var magicBytes = map[string][]byte{
	"image/jpeg": {0xFF, 0xD8, 0xFF},
	"image/png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	"image/webp": {0x52, 0x49, 0x46, 0x46}, // RIFF....WEBP
}

// DetectType detects the actual image type from magic bytes.
func DetectType(data []byte) (string, error) {
	if len(data) < 12 {
		return "", fmt.Errorf("data too short to detect type")
	}
	if bytes.HasPrefix(data, magicBytes["image/jpeg"]) {
		return "image/jpeg", nil
	}
	if bytes.HasPrefix(data, magicBytes["image/png"]) {
		return "image/png", nil
	}
	if bytes.HasPrefix(data, magicBytes["image/webp"]) && string(data[8:12]) == "WEBP" {
		return "image/webp", nil
	}
	return "", fmt.Errorf("unsupported image type")
}

func decodeConfig(data []byte, mimeType string) (image.Config, error) {
	r := bytes.NewReader(data)
	switch mimeType {
	case "image/jpeg":
		return jpeg.DecodeConfig(r)
	case "image/png":
		return png.DecodeConfig(r)
	case "image/webp":
		return webp.DecodeConfig(r)
	default:
		return image.Config{}, fmt.Errorf("unsupported image type: %s", mimeType)
	}
}

// DecodeImage decodes an image from raw bytes.
func DecodeImage(data []byte, mimeType string) (image.Image, error) {
	r := bytes.NewReader(data)
	switch mimeType {
	case "image/jpeg":
		return jpeg.Decode(r)
	case "image/png":
		return png.Decode(r)
	case "image/webp":
		return webp.Decode(r)
	default:
		return nil, fmt.Errorf("unsupported image type: %s", mimeType)
	}
}
