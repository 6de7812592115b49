// Package links finds the links in a Markdown document that are candidates
// for a link preview card.
package links

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Link is a link found in a document
type Link struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Text     string `json:"text"`
	External bool   `json:"isExternal"`
}

// htmlAnchorPattern matches inline <a href="...">text</a> anchors
var htmlAnchorPattern = regexp.MustCompile(`(?i)<a\s+[^>]*href=["']([^"']*)["'][^>]*>([^<]*)</a>`)

var markdown = goldmark.New()

// Extract returns the links of a Markdown document in document order.
// Markdown links and autolinks come first, followed by raw HTML anchors whose
// URL was not already seen. Links without text are skipped.
func Extract(source []byte) []Link {
	var links []Link

	doc := markdown.Parser().Parse(text.NewReader(source))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			u := strings.TrimSpace(string(node.Destination))
			t := strings.TrimSpace(nodeText(node, source))
			if u != "" && t != "" {
				links = append(links, Link{
					URL:      u,
					Title:    strings.TrimSpace(string(node.Title)),
					Text:     t,
					External: IsExternal(u),
				})
			}
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			u := strings.TrimSpace(string(node.URL(source)))
			if u != "" {
				links = append(links, Link{
					URL:      u,
					Text:     string(node.Label(source)),
					External: IsExternal(u),
				})
			}
		}
		return ast.WalkContinue, nil
	})

	for _, match := range htmlAnchorPattern.FindAllSubmatch(source, -1) {
		u := strings.TrimSpace(string(match[1]))
		t := strings.TrimSpace(string(match[2]))
		if u == "" || t == "" {
			continue
		}
		if lo.ContainsBy(links, func(l Link) bool { return l.URL == u }) {
			continue
		}
		links = append(links, Link{
			URL:      u,
			Text:     t,
			External: IsExternal(u),
		})
	}

	return links
}

// nodeText concatenates the text segments below n.
func nodeText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// IsExternal reports whether u is an absolute http or https URL.
func IsExternal(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

// Normalize returns a canonical form of u used for de-duplication: lower-case
// scheme and host, and "/" for an empty path. Unparseable input is returned as is.
func Normalize(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || !parsed.IsAbs() {
		return u
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	if parsed.Path == "" && parsed.Opaque == "" {
		parsed.Path = "/"
	}
	return parsed.String()
}

// Unique drops links whose normalized URL was already seen, keeping the first.
func Unique(links []Link) []Link {
	return lo.UniqBy(links, func(l Link) string {
		return Normalize(l.URL)
	})
}

// External keeps only links to http or https URLs.
func External(links []Link) []Link {
	return lo.Filter(links, func(l Link, _ int) bool {
		return l.External
	})
}
