package supabase

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// Storage implements the blob store on one Supabase Storage bucket.
type Storage struct {
	c      *Client
	bucket string
}

func NewStorage(c *Client, bucket string) *Storage {
	return &Storage{c: c, bucket: bucket}
}

func (s *Storage) objectPath(key string) string {
	return "/storage/v1/object/" + url.PathEscape(s.bucket) + "/" + escapeKey(key)
}

// Upload creates the object; an existing key is not overwritten.
func (s *Storage) Upload(ctx context.Context, key, contentType string, data []byte) error {
	err := s.c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   s.objectPath(key),
		body:   bytes.NewReader(data),
		headers: map[string]string{
			"Content-Type":  contentType,
			"Cache-Control": "max-age=3600",
			"x-upsert":      "false",
		},
	}, nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		return domain.New(domain.KindForbidden, "upload_forbidden", "not allowed to upload")
	}
	return err
}

// PublicURL needs no network call: public buckets serve under a fixed prefix.
func (s *Storage) PublicURL(key string) string {
	return s.c.baseURL + "/storage/v1/object/public/" + url.PathEscape(s.bucket) + "/" + escapeKey(key)
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	return s.c.doJSON(ctx, request{method: http.MethodDelete, path: s.objectPath(key)}, nil, nil)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
