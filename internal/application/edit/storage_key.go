package edit

import (
	"fmt"
	"strings"
	"time"
)

const defaultExt = "jpg"

var extByType = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// StorageKey names an uploaded image after its event and the upload time so repeated
// uploads for the same event never collide.
func StorageKey(eventID string, now time.Time, contentType string) string {
	ext, ok := extByType[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		ext = defaultExt
	}
	return fmt.Sprintf("%s-%d.%s", eventID, now.UnixMilli(), ext)
}
