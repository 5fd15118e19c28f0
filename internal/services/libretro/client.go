package libretro

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gearboy/internal/textutil"
)

// Thumbnail systems for Game Boy cartridges.
const (
	SystemGameBoy      = "Nintendo - Game Boy"
	SystemGameBoyColor = "Nintendo - Game Boy Color"
)

// maxImageBytes bounds a single thumbnail download.
const maxImageBytes = 8 << 20

// ErrNotFound reports that the service has no box art for the title.
var ErrNotFound = errors.New("libretro thumbnail not found")

// Fetcher downloads box-art images.
type Fetcher interface {
	FetchBoxArt(ctx context.Context, system, title string) ([]byte, error)
}

// Client downloads named box-art thumbnails from the libretro thumbnail server.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(agent)
	}
}

// New creates a thumbnail client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("libretro base url required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse libretro base url: %w", err)
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// BoxArtURL builds the thumbnail URL for title within system.
func (c *Client) BoxArtURL(system, title string) string {
	return c.baseURL + "/" + url.PathEscape(system) + "/Named_Boxarts/" + url.PathEscape(textutil.ThumbnailName(title)) + ".png"
}

// FetchBoxArt downloads the PNG thumbnail for title. A 404 maps to ErrNotFound.
func (c *Client) FetchBoxArt(ctx context.Context, system, title string) ([]byte, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}
	endpoint := c.BoxArtURL(system, title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("libretro thumbnail returned %d (latency=%v)", resp.StatusCode, latency)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read thumbnail: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("thumbnail exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}

// Systems returns the thumbnail systems to try for a ROM file, most likely
// first. Color cartridges are usually filed under Game Boy Color.
func Systems(color bool) []string {
	if color {
		return []string{SystemGameBoyColor, SystemGameBoy}
	}
	return []string{SystemGameBoy, SystemGameBoyColor}
}
