package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/ka2n/ogrelay/api"
	"github.com/ka2n/ogrelay/api/metadata"
)

const wordWrap = 100

func renderMarkdown(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}

// cardMarkdown describes one fetch result as a Markdown section
func cardMarkdown(heading, target string, r api.FetchResult) string {
	var b strings.Builder

	if !r.Success {
		fmt.Fprintf(&b, "## %s\n\n", heading)
		fmt.Fprintf(&b, "<%s>\n\n", target)
		fmt.Fprintf(&b, "> %s\n\n", r.Error)
		return b.String()
	}

	d := r.Data
	title := d.Title
	if title == "" {
		title = heading
	}
	fmt.Fprintf(&b, "## %s\n\n", title)
	if d.SiteName != "" {
		fmt.Fprintf(&b, "*%s*\n\n", d.SiteName)
	}
	if d.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", d.Description)
	}
	fmt.Fprintf(&b, "- Link: <%s>\n", target)
	fmt.Fprintf(&b, "- Image: <%s>%s\n", d.ImageURL, dimensions(d))
	if r.FromCache {
		b.WriteString("- Cached: yes\n")
	}
	b.WriteString("\n")
	return b.String()
}

func dimensions(d *metadata.Metadata) string {
	if d.ImageWidth == nil || d.ImageHeight == nil {
		return ""
	}
	return fmt.Sprintf(" (%dx%d)", *d.ImageWidth, *d.ImageHeight)
}

func resultsMarkdown(results []urlResult) string {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(cardMarkdown(r.URL, r.URL, r.FetchResult))
	}
	return b.String()
}

// renderPreviews renders each document preview separately and returns the
// joined output with the starting line of every card.
func renderPreviews(previews []api.LinkPreview) (string, []int, error) {
	var (
		b       strings.Builder
		offsets []int
		line    int
	)
	for _, p := range previews {
		heading := p.Link.Text
		if heading == "" {
			heading = p.Link.URL
		}
		out, err := renderMarkdown(cardMarkdown(heading, p.Link.URL, p.Result))
		if err != nil {
			return "", nil, err
		}
		offsets = append(offsets, line)
		line += strings.Count(out, "\n")
		b.WriteString(out)
	}
	return b.String(), offsets, nil
}
