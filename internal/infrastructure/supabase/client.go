// Package supabase talks to a hosted Supabase project over its REST surface.
//
// Every call sends the project's anon key as apikey. The Authorization bearer is
// the acting visitor's access token when there is one, so the project's row-level
// policies decide what the visitor may read and write.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appCtx "github.com/baechuer/real-time-ressys/services/listing-service/internal/pkg/context"
)

const maxErrorBody = 4 << 10

type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func New(baseURL, anonKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    httpClient,
	}
}

// bearer picks the token for a call: explicit token, then the actor's, then the anon key.
func (c *Client) bearer(ctx context.Context, token string) string {
	if token != "" {
		return token
	}
	if t := appCtx.GetActor(ctx).AccessToken; t != "" {
		return t
	}
	return c.anonKey
}

type request struct {
	method  string
	path    string
	token   string
	body    io.Reader
	headers map[string]string
}

func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer(ctx, r.token))
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	return res, nil
}

// doJSON sends in as JSON (when non-nil) and decodes a 2xx body into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, r request, in, out any) error {
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		r.body = bytes.NewReader(b)
		if r.headers == nil {
			r.headers = map[string]string{}
		}
		r.headers["Content-Type"] = "application/json"
	}

	res, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return readAPIError(res)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}
