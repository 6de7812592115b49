package api

import (
	"bytes"
	"context"

	"github.com/ka2n/ogrelay/api/links"
	"golang.org/x/sync/errgroup"
)

// documentConcurrency bounds parallel fetches for one document
const documentConcurrency = 4

// PreviewSettings controls which links of a document get preview cards
type PreviewSettings struct {
	Enabled          bool `json:"enabled" mapstructure:"enabled"`
	ShowInPreview    bool `json:"showInPreview" mapstructure:"show_in_preview"`
	MaxImagesPerPage int  `json:"maxImagesPerPage" mapstructure:"max_images_per_page" validate:"gte=0"`
	CacheEnabled     bool `json:"cacheEnabled" mapstructure:"cache_enabled"`
}

// DefaultPreviewSettings enables previews for up to 10 links with caching
var DefaultPreviewSettings = PreviewSettings{
	Enabled:          true,
	ShowInPreview:    true,
	MaxImagesPerPage: 10,
	CacheEnabled:     true,
}

// PreviewTargets returns the external, de-duplicated links of a Markdown
// document that would get preview cards under settings, in document order.
// A MaxImagesPerPage of zero or less yields no targets.
func PreviewTargets(markdown []byte, settings PreviewSettings) []links.Link {
	if !settings.Enabled || !settings.ShowInPreview || settings.MaxImagesPerPage <= 0 ||
		len(bytes.TrimSpace(markdown)) == 0 {
		return nil
	}

	targets := links.Unique(links.External(links.Extract(markdown)))
	if len(targets) > settings.MaxImagesPerPage {
		targets = targets[:settings.MaxImagesPerPage]
	}
	return targets
}

// FetchDocument fetches metadata for every preview target of a Markdown
// document. Results keep the order of PreviewTargets.
func (f *Fetcher) FetchDocument(ctx context.Context, markdown []byte, settings PreviewSettings) []LinkPreview {
	targets := PreviewTargets(markdown, settings)
	if len(targets) == 0 {
		return nil
	}

	previews := make([]LinkPreview, len(targets))

	var g errgroup.Group
	g.SetLimit(documentConcurrency)
	for i, link := range targets {
		g.Go(func() error {
			previews[i] = LinkPreview{
				Link:   link,
				Result: f.fetch(ctx, link.URL, settings.CacheEnabled),
			}
			return nil
		})
	}
	_ = g.Wait()

	return previews
}
