package metadata

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DocumentParser walks the parsed HTML tree instead of matching patterns, so
// attribute order and self-closing styles do not matter. Both property="og:*"
// and name="og:*" meta tags are recognized; the first occurrence wins.
type DocumentParser struct{}

// Parse implements Parser.
func (DocumentParser) Parse(body string) Metadata {
	var m Metadata
	if strings.TrimSpace(body) == "" {
		return m
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return m
	}

	props := map[string]string{}
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, ok := s.Attr("property")
		if !ok {
			key, ok = s.Attr("name")
		}
		if !ok {
			return
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if !strings.HasPrefix(key, "og:") {
			return
		}
		if _, seen := props[key]; seen {
			return
		}
		content, ok := s.Attr("content")
		if !ok {
			return
		}
		props[key] = strings.TrimSpace(content)
	})

	m.ImageURL = props["og:image"]
	m.Title = props["og:title"]
	m.Description = props["og:description"]
	m.SiteName = props["og:site_name"]
	m.ImageWidth = parseDimension(props["og:image:width"])
	m.ImageHeight = parseDimension(props["og:image:height"])

	if m.Title == "" {
		m.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	return m
}

var _ Parser = DocumentParser{}

// ParserByName returns the parser registered under name; unknown names fall
// back to PatternParser.
func ParserByName(name string) Parser {
	switch strings.ToLower(name) {
	case "document", "dom", "goquery":
		return DocumentParser{}
	default:
		return PatternParser{}
	}
}
