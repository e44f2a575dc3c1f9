// Package imaging retrieves sprite images and produces bank-slot variants.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/osrs-kit/spritefetch/internal/ratelimit"

	// Sprite uploads on the wiki are overwhelmingly PNG, but a handful of
	// older files are GIF or have been re-encoded. Register the decoders so
	// image.Decode can sniff whatever comes back.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Fetcher downloads and decodes sprite images. It performs a single GET per
// URL with no retry; failures are reported per image and never batched.
type Fetcher struct {
	client    *http.Client
	limiter   ratelimit.Limiter
	userAgent string
}

// NewFetcher creates a Fetcher with dependency injection.
func NewFetcher(client *http.Client, limiter ratelimit.Limiter, userAgent string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		client:    client,
		limiter:   limiter,
		userAgent: userAgent,
	}
}

// Fetch retrieves the image at url and decodes it preserving the source
// channel layout, including alpha. It returns *NetworkError on transport or
// HTTP failure and *DecodeError on malformed image bytes.
func (f *Fetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, url); err != nil {
			return nil, &NetworkError{URL: url, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("bad status: %d %s", resp.StatusCode, resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, &DecodeError{URL: url, Err: err}
	}

	log.Debug().
		Str("url", url).
		Str("format", format).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Image fetched")

	return img, nil
}
