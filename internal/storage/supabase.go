// Package storage wraps the Supabase storage API: public URL resolution for
// diagrams and media, optional image transforms, and direct downloads.
package storage

import (
	"fmt"
	"net/url"
	"strings"

	storagego "github.com/supabase-community/storage-go"

	"github.com/terralote/explorer-backend/internal/explorer/domain"
)

// Client addresses one bucket of a Supabase project. The rest of the service
// treats the URLs it produces as opaque.
type Client struct {
	client  *storagego.Client
	bucket  string
	baseURL string
}

// New creates a storage client. The service key is only needed for
// downloads; public URL generation works without it.
func New(supabaseURL, serviceKey, bucket string) *Client {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &Client{
		client:  storagego.NewClient(baseURL+"/storage/v1", serviceKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// PublicURL returns the plain public object URL for a storage path.
func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, strings.TrimLeft(path, "/"))
}

// TransformOptions selects a server-side image transform.
type TransformOptions struct {
	Width   int
	Height  int
	Quality int
	Format  string
}

// RenderURL returns the image-transform URL for a storage path. With zero
// options it falls back to the plain public URL.
func (c *Client) RenderURL(path string, opts TransformOptions) string {
	params := url.Values{}
	if opts.Width > 0 {
		params.Set("width", fmt.Sprint(opts.Width))
	}
	if opts.Height > 0 {
		params.Set("height", fmt.Sprint(opts.Height))
	}
	if opts.Quality > 0 {
		params.Set("quality", fmt.Sprint(opts.Quality))
	}
	if opts.Format != "" {
		params.Set("format", opts.Format)
	}
	if len(params) == 0 {
		return c.PublicURL(path)
	}
	return fmt.Sprintf("%s/storage/v1/render/image/public/%s/%s?%s",
		c.baseURL, c.bucket, strings.TrimLeft(path, "/"), params.Encode())
}

// ResponsiveURLs returns the standard srcset variants for a storage path.
func (c *Client) ResponsiveURLs(path string) map[string]string {
	return map[string]string{
		"thumbnail": c.RenderURL(path, TransformOptions{Width: 150, Height: 150, Quality: 70, Format: "webp"}),
		"small":     c.RenderURL(path, TransformOptions{Width: 400, Quality: 80, Format: "webp"}),
		"medium":    c.RenderURL(path, TransformOptions{Width: 800, Quality: 85, Format: "webp"}),
		"large":     c.RenderURL(path, TransformOptions{Width: 1200, Quality: 90, Format: "webp"}),
		"original":  c.PublicURL(path),
	}
}

// ResolveMediaURL returns the renderable URL for a media row: the stored
// resolved URL when the admin pipeline filled it in, else the public URL of
// its storage path.
func (c *Client) ResolveMediaURL(m *domain.Media) string {
	if m.URL != "" {
		return m.URL
	}
	if m.StoragePath == "" {
		return ""
	}
	return c.PublicURL(m.StoragePath)
}

// ResolveDiagramURL returns the fetchable URL for a diagram document path.
// Absolute URLs pass through untouched.
func (c *Client) ResolveDiagramURL(svgPath string) string {
	if svgPath == "" {
		return ""
	}
	if strings.HasPrefix(svgPath, "http://") || strings.HasPrefix(svgPath, "https://") {
		return svgPath
	}
	return c.PublicURL(svgPath)
}

// Download fetches an object's bytes through the storage API.
func (c *Client) Download(path string) ([]byte, error) {
	data, err := c.client.DownloadFile(c.bucket, strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	return data, nil
}
