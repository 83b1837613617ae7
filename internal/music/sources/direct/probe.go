package direct

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

var validContentTypes = []string{
	"audio/",
	"video/",
	"application/vnd.apple.mpegurl",
	"application/x-mpegurl",
	"application/ogg",
	"application/x-scpls",
	"application/xspf+xml",
	"application/octet-stream",
}

// Prober checks that a link points at something ffmpeg can play, using
// response headers and file extension heuristics.
type Prober struct {
	Client *http.Client
}

func NewProber(client *http.Client) *Prober {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Prober{Client: client}
}

// Probe returns the content type of a playable link or an error explaining
// why the link was rejected.
func (p *Prober) Probe(ctx context.Context, rawURL string) (string, error) {
	contentType, finalURL, err := p.fetchContentType(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch content type: %w", err)
	}

	if isAllowedType(contentType) || isLikelyPlaylist(finalURL) {
		return contentType, nil
	}
	return contentType, fmt.Errorf("invalid stream content-type: %q, url: %s", contentType, finalURL)
}

func (p *Prober) fetchContentType(ctx context.Context, rawURL string) (string, string, error) {
	resp, err := p.do(ctx, http.MethodHead, rawURL)
	if err != nil || resp.StatusCode >= 400 {
		if resp != nil {
			resp.Body.Close()
		}
		// some stream servers reject HEAD
		resp, err = p.do(ctx, http.MethodGet, rawURL)
		if err != nil {
			return "", "", fmt.Errorf("GET fallback failed: %w", err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return "", "", fmt.Errorf("GET fallback failed with status code %d", resp.StatusCode)
		}
	}
	defer resp.Body.Close()
	// live streams never end, read only a little before closing
	_, _ = io.CopyN(io.Discard, resp.Body, 512)

	return resp.Header.Get("Content-Type"), resp.Request.URL.String(), nil
}

func (p *Prober) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	return p.Client.Do(req)
}

func isAllowedType(contentType string) bool {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	for _, allowed := range validContentTypes {
		if strings.HasPrefix(contentType, allowed) {
			return true
		}
	}
	return false
}

func isLikelyPlaylist(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".m3u", ".m3u8", ".pls", ".xspf", ".asx":
		return true
	}
	return false
}
