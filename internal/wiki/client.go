// Package wiki queries the OSRS wiki API and resolves item titles to sprite
// image URLs embedded in page markup.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/osrs-kit/spritefetch/internal/ratelimit"
)

// DefaultBaseURL is the production wiki. Tests point the client elsewhere.
const DefaultBaseURL = "https://oldschool.runescape.wiki/"

var (
	// ErrPageNotFound means the wiki has no page for the queried title.
	ErrPageNotFound = errors.New("page not found")
	// ErrSpriteNotLocated means the page exists but its markup carries no
	// File reference to extract.
	ErrSpriteNotLocated = errors.New("sprite not located in page markup")
)

// filePattern matches the first embedded file reference in raw wiki markup,
// e.g. [[File:Lobster.png]] inside the item infobox.
var filePattern = regexp.MustCompile(`\[\[File:(.*?)\]\]`)

// Client talks to the wiki's api.php endpoint.
type Client struct {
	baseURL      string
	client       *http.Client
	limiter      ratelimit.Limiter
	userAgent    string
	htmlFallback bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTMLFallback enables resolving sprites from the rendered page's
// og:image meta tag when the revision markup has no File reference.
func WithHTMLFallback() Option {
	return func(c *Client) { c.htmlFallback = true }
}

// WithUserAgent sets the User-Agent header sent on API requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a wiki Client. baseURL must end with a slash; the
// production default is DefaultBaseURL.
func NewClient(baseURL string, client *http.Client, limiter ratelimit.Limiter, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{
		baseURL: baseURL,
		client:  client,
		limiter: limiter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the wiki base the client was configured with.
func (c *Client) BaseURL() string { return c.baseURL }

// revisionEnvelope mirrors the subset of the query API response we consume:
// a page collection keyed by page id, each page holding its latest revision's
// raw markup under the legacy "*" key.
type revisionEnvelope struct {
	Query struct {
		Pages map[string]struct {
			Revisions []struct {
				Content string `json:"*"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// ResolveSpriteURL resolves an item title to the URL of its sprite image.
// It returns ErrPageNotFound when the wiki has no such page and
// ErrSpriteNotLocated when the page markup contains no File reference.
func (c *Client) ResolveSpriteURL(ctx context.Context, title string) (string, error) {
	markup, err := c.pageMarkup(ctx, title)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) && c.htmlFallback {
			return c.spriteFromRenderedPage(ctx, title)
		}
		return "", err
	}

	match := filePattern.FindStringSubmatch(markup)
	if match == nil {
		log.Debug().Str("title", title).Msg("No File reference in page markup")
		if c.htmlFallback {
			return c.spriteFromRenderedPage(ctx, title)
		}
		return "", fmt.Errorf("%q: %w", title, ErrSpriteNotLocated)
	}

	filename := strings.ReplaceAll(match[1], " ", "_")
	return c.baseURL + "images/" + filename, nil
}

// pageMarkup fetches the latest revision's raw markup for a title.
func (c *Client) pageMarkup(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"action": {"query"},
		"prop":   {"revisions"},
		"rvprop": {"content"},
		"format": {"json"},
		"titles": {title},
	}

	body, err := c.get(ctx, c.baseURL+"api.php?"+params.Encode())
	if err != nil {
		return "", err
	}

	var envelope revisionEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decoding wiki response for %q: %w", title, err)
	}

	for id, page := range envelope.Query.Pages {
		if pageID, err := strconv.Atoi(id); err == nil && pageID < 0 {
			return "", fmt.Errorf("%q: %w", title, ErrPageNotFound)
		}
		if len(page.Revisions) == 0 {
			return "", fmt.Errorf("%q: %w", title, ErrPageNotFound)
		}
		return page.Revisions[0].Content, nil
	}
	return "", fmt.Errorf("%q: %w", title, ErrPageNotFound)
}

// spriteFromRenderedPage reads the og:image meta tag off the rendered wiki
// page. Used only when the fallback is enabled.
func (c *Client) spriteFromRenderedPage(ctx context.Context, title string) (string, error) {
	body, err := c.get(ctx, c.baseURL+"w/"+url.PathEscape(title))
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("parsing rendered page for %q: %w", title, err)
	}

	if src, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && src != "" {
		log.Debug().Str("title", title).Str("src", src).Msg("Sprite resolved via og:image fallback")
		return src, nil
	}
	return "", fmt.Errorf("%q: %w", title, ErrSpriteNotLocated)
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, fullURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", fullURL).Msg("Wiki request failed")
		return nil, fmt.Errorf("wiki request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wiki request failed: bad status %d %s", resp.StatusCode, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
