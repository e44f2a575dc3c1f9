// Package scrape drives the resolve, fetch, bankify, persist pipeline over a
// comma-separated request of item names.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"

	"github.com/osrs-kit/spritefetch/internal/imaging"
	"github.com/osrs-kit/spritefetch/internal/store"
	"github.com/osrs-kit/spritefetch/internal/titles"
	"github.com/osrs-kit/spritefetch/internal/wiki"
)

// Variant selects which sprite outputs are produced per item.
type Variant string

const (
	VariantNormal Variant = "normal"
	VariantBank   Variant = "bank"
	VariantBoth   Variant = "both"
)

// Valid reports whether the variant is one of the recognized values.
func (v Variant) Valid() bool {
	switch v {
	case VariantNormal, VariantBank, VariantBoth:
		return true
	}
	return false
}

// Notifier receives human-readable progress and error messages in pipeline
// order. The default prints to stdout.
type Notifier func(msg string)

// ItemResult records the outcome of one item's pipeline run. Failures are
// carried as values so one bad item never aborts the rest of the request.
type ItemResult struct {
	Name      string
	SpriteURL string
	Written   []string
	Err       error
	Oversized bool
}

// Skipped reports whether the item produced no output.
func (r ItemResult) Skipped() bool { return r.Err != nil }

// Resolver resolves an item title to a sprite image URL.
type Resolver interface {
	ResolveSpriteURL(ctx context.Context, title string) (string, error)
}

// Fetcher downloads and decodes a sprite image.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// Scraper orchestrates the pipeline. It is strictly sequential: one item at a
// time, one attempt per item, no retries.
type Scraper struct {
	resolver Resolver
	fetcher  Fetcher
	sink     store.Sink
	notify   Notifier
	progress func(done, total int)
}

// New creates a Scraper. A nil notifier defaults to printing to stdout.
func New(resolver Resolver, fetcher Fetcher, sink store.Sink, notify Notifier) *Scraper {
	if notify == nil {
		notify = func(msg string) { fmt.Println(msg) }
	}
	return &Scraper{
		resolver: resolver,
		fetcher:  fetcher,
		sink:     sink,
		notify:   notify,
	}
}

// SetProgress installs a hook called after each item completes, with the
// number of items finished so far and the total.
func (s *Scraper) SetProgress(fn func(done, total int)) {
	s.progress = fn
}

// Run processes a raw comma-separated request. An unrecognized variant or an
// empty request aborts the whole run with a single notification; every other
// failure is isolated to its item. The returned slice holds one result per
// item in request order.
func (s *Scraper) Run(ctx context.Context, raw string, variant Variant) []ItemResult {
	if !variant.Valid() {
		s.notify("Invalid image type argument.")
		return nil
	}

	items := titles.FormatArgs(raw)
	if len(items) == 0 {
		s.notify("No search terms entered.")
		return nil
	}

	s.notify("Beginning search...\n")

	results := make([]ItemResult, 0, len(items))
	for i, item := range items {
		item = titles.CapitalizeEachWord(item)
		results = append(results, s.runItem(ctx, item, variant))
		if s.progress != nil {
			s.progress(i+1, len(items))
		}
	}

	s.notify(fmt.Sprintf("Search complete. Images saved to:\n%s.\n", s.sink.Destination()))
	return results
}

func (s *Scraper) runItem(ctx context.Context, item string, variant Variant) ItemResult {
	result := ItemResult{Name: item}
	s.notify(fmt.Sprintf("Searching for %s...", item))

	spriteURL, err := s.resolver.ResolveSpriteURL(ctx, item)
	if err != nil {
		if errors.Is(err, wiki.ErrPageNotFound) || errors.Is(err, wiki.ErrSpriteNotLocated) {
			log.Debug().Err(err).Str("item", item).Msg("Sprite not resolved")
		} else {
			log.Warn().Err(err).Str("item", item).Msg("Wiki lookup failed")
		}
		s.notify(fmt.Sprintf("No image found for %s.\n", item))
		result.Err = err
		return result
	}
	result.SpriteURL = spriteURL
	s.notify("Found image.")

	s.notify("Downloading image...")
	img, err := s.fetcher.Fetch(ctx, spriteURL)
	if err != nil {
		var netErr *imaging.NetworkError
		var decErr *imaging.DecodeError
		switch {
		case errors.As(err, &netErr):
			s.notify(fmt.Sprintf("Network error: %v\n", netErr.Err))
		case errors.As(err, &decErr):
			s.notify(fmt.Sprintf("Image decoding error: %v\n", decErr.Err))
		default:
			s.notify(fmt.Sprintf("Download failed: %v\n", err))
		}
		result.Err = err
		return result
	}

	if variant == VariantNormal || variant == VariantBoth {
		path, err := s.sink.WriteSprite(item, img)
		if err != nil {
			s.notify(fmt.Sprintf("Failed to save %s sprite: %v\n", item, err))
			result.Err = err
			return result
		}
		result.Written = append(result.Written, path)
		suffix := "\n"
		if variant == VariantBoth {
			suffix = ""
		}
		s.notify(fmt.Sprintf("Success: %s sprite saved.%s", item, suffix))
	}

	if variant == VariantBank || variant == VariantBoth {
		banked, oversized := imaging.Bankify(img)
		if oversized {
			result.Oversized = true
			s.notify(fmt.Sprintf("Warning: %s is larger than a bank slot; saving it unchanged.", item))
		}
		path, err := s.sink.WriteSprite(item+"_bank", banked)
		if err != nil {
			s.notify(fmt.Sprintf("Failed to save %s bank sprite: %v\n", item, err))
			result.Err = err
			return result
		}
		result.Written = append(result.Written, path)
		s.notify(fmt.Sprintf("Success: %s bank sprite saved.\n", item))
	}

	return result
}
