// Package web renders the event listing page.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/edit"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/listing"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/dto"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var page = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"fecha":      FormatDate,
	"previewURL": func(handle string) string { return dto.PreviewPath + handle },
	"knownType":  domain.IsKnownEventType,
	"imgSrc":     imgSrc,
	"deref":      domain.DerefString,
}).ParseFS(templatesFS, "templates/page.html"))

// Page is everything the listing page shows for one visitor.
type Page struct {
	Session    domain.Session
	List       listing.Snapshot
	Edit       edit.Snapshot
	EventTypes []string
}

func NewPage(s domain.Session, l listing.Snapshot, e edit.Snapshot) Page {
	return Page{Session: s, List: l, Edit: e, EventTypes: domain.EventTypes}
}

// Render executes into a buffer first so a template error never leaves a half-written page.
func Render(w http.ResponseWriter, status int, p Page) error {
	var buf bytes.Buffer
	if err := page.Execute(&buf, p); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the page's script and stylesheet.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServerFS(sub)
}

var (
	weekdaysES = [...]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"}
	monthsES   = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}
)

// FormatDate renders a card date the way es-MX short dates read, e.g. "vie, 15 mar, 18:30".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s, %d %s, %02d:%02d",
		weekdaysES[t.Weekday()], t.Day(), monthsES[t.Month()-1], t.Hour(), t.Minute())
}

// imgSrc admits remote images and the data: URL of a confirmed crop; anything else is dropped.
func imgSrc(s string) template.URL {
	switch {
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"):
		return template.URL(s)
	case strings.HasPrefix(s, "data:image/jpeg;base64,"), strings.HasPrefix(s, "data:image/png;base64,"),
		strings.HasPrefix(s, "data:image/webp;base64,"):
		return template.URL(s)
	}
	return template.URL("#")
}
