package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/crop"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/visitor"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/middleware"
)

// ---- fakes ----

type fakeProvider struct{}

func (fakeProvider) SignIn(ctx context.Context, email, password string) (auth.Credentials, domain.Identity, error) {
	switch {
	case email == "admin@example.com" && password == "admin1234":
		return auth.Credentials{AccessToken: "tok-admin", ExpiresAt: time.Now().Add(time.Hour)},
			domain.Identity{ID: "u-admin", Email: email}, nil
	case email == "user@example.com" && password == "user1234":
		return auth.Credentials{AccessToken: "tok-user"}, domain.Identity{ID: "u-user", Email: email}, nil
	}
	return auth.Credentials{}, domain.Identity{}, domain.ErrInvalidCredentials()
}

func (fakeProvider) GetUser(ctx context.Context, token string) (domain.Identity, error) {
	switch token {
	case "tok-admin":
		return domain.Identity{ID: "u-admin", Email: "admin@example.com"}, nil
	case "tok-user":
		return domain.Identity{ID: "u-user", Email: "user@example.com"}, nil
	}
	return domain.Identity{}, domain.ErrTokenInvalid()
}

func (fakeProvider) SignOut(ctx context.Context, token string) error { return nil }

type fakeRoles struct{}

func (fakeRoles) RoleOf(ctx context.Context, userID string) (string, error) {
	if userID == "u-admin" {
		return domain.RoleAdmin, nil
	}
	return "", domain.ErrNotFound("role")
}

type memStore struct {
	mu       sync.Mutex
	events   []domain.Event
	listErr  error
	updErr   error
	uploads  map[string][]byte
	upErr    error
	removed  []string
	lastUser string
}

func (m *memStore) List(ctx context.Context) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.Event(nil), m.events...), nil
}

func (m *memStore) UpdateEvent(ctx context.Context, id string, p domain.EventPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updErr != nil {
		return m.updErr
	}
	for i := range m.events {
		if m.events[i].ID == id {
			m.events[i] = m.events[i].Apply(p)
			return nil
		}
	}
	return domain.ErrNotFound("event")
}

func (m *memStore) Upload(ctx context.Context, key, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upErr != nil {
		return m.upErr
	}
	if m.uploads == nil {
		m.uploads = map[string][]byte{}
	}
	m.uploads[key] = data
	return nil
}

func (m *memStore) PublicURL(key string) string { return "https://cdn.example.com/" + key }

func (m *memStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, key)
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// ---- harness ----

type harness struct {
	t        *testing.T
	srv      http.Handler
	store    *memStore
	previews *crop.MemoryPreviews
	cookies  map[string]*http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := &memStore{events: []domain.Event{
		{ID: "e1", Description: "Concierto", Location: "Foro Sol", EventType: domain.EventTypeMusic,
			EventDate: time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)},
		{ID: "e2", Description: "Maratón", Location: "Reforma", EventType: domain.EventTypeSports,
			EventDate: time.Date(2024, 4, 1, 7, 0, 0, 0, time.UTC)},
	}}
	previews := crop.NewMemoryPreviews()
	hub := visitor.NewHub(visitor.Deps{
		Provider: fakeProvider{},
		Roles:    fakeRoles{},
		Lister:   store,
		Blobs:    store,
		Records:  store,
		Clock:    fixedClock{t: time.UnixMilli(1710527400000)},
		Previews: previews,
		Limits:   crop.DefaultLimits,
		Log:      zerolog.Nop(),
	}, time.Minute)
	t.Cleanup(hub.Close)

	sess := NewSessionHandler(false, time.Hour)
	events := NewEventsHandler()
	ed := NewEditHandler(1 << 20)

	r := chi.NewRouter()
	r.Get("/previews/{handle}", NewPreviewsHandler(previews).Get)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewVisitors(hub, false).Attach)
		r.Get("/", NewPageHandler().Index)
		r.Get("/api/session", sess.Get)
		r.Post("/api/session/login", sess.Login)
		r.Post("/api/session/logout", sess.Logout)
		r.Get("/api/events", events.List)
		r.Route("/api/edit", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", ed.Get)
			r.Post("/", ed.Open)
			r.Patch("/", ed.Update)
			r.Delete("/", ed.Cancel)
			r.Post("/image", ed.SelectImage)
			r.Patch("/crop", ed.AdjustCrop)
			r.Post("/crop/confirm", ed.ConfirmCrop)
			r.Delete("/crop", ed.CancelCrop)
			r.Post("/save", ed.Save)
		})
	})

	return &harness{t: t, srv: r, store: store, previews: previews, cookies: map[string]*http.Cookie{}}
}

// do sends a request carrying the cookies collected so far, like a browser would.
func (h *harness) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.srv.ServeHTTP(rr, req)

	for _, c := range rr.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(h.cookies, c.Name)
			continue
		}
		h.cookies[c.Name] = &http.Cookie{Name: c.Name, Value: c.Value}
	}
	return rr
}

func (h *harness) json(method, path, body string) *httptest.ResponseRecorder {
	h.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return h.do(method, path, r, "application/json")
}

func (h *harness) loginAdmin() {
	h.t.Helper()
	rr := h.json(http.MethodPost, "/api/session/login", `{"email":"admin@example.com","password":"admin1234"}`)
	require.Equal(h.t, http.StatusOK, rr.Code, rr.Body.String())
}

func (h *harness) upload(data []byte) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "foto.png")
	require.NoError(h.t, err)
	_, err = fw.Write(data)
	require.NoError(h.t, err)
	require.NoError(h.t, mw.Close())
	return h.do(http.MethodPost, "/api/edit/image", &buf, mw.FormDataContentType())
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func errorCodeOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body.Error.Code
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

var errBoom = errors.New("boom")
