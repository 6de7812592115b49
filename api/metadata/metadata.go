// Package metadata extracts Open Graph link-preview fields from HTML.
package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

// Metadata is the set of Open Graph fields used to render a link card.
// Empty strings and nil dimensions mean the field was not found.
type Metadata struct {
	ImageURL    string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
	ImageWidth  *int   `json:"width,omitempty"`
	ImageHeight *int   `json:"height,omitempty"`
}

// Found reports whether an image URL was extracted. Metadata without an image
// is treated as a miss even when other fields are populated.
func (m Metadata) Found() bool {
	return m.ImageURL != ""
}

// Parser extracts Metadata from a page body. Implementations never fail;
// unparseable input yields an empty Metadata.
type Parser interface {
	Parse(body string) Metadata
}

// PatternParser matches each field with an independent regular expression.
// It expects property to precede content inside the meta tag.
type PatternParser struct{}

var (
	ogPatterns = map[string]*regexp.Regexp{
		"image":       ogPattern("og:image"),
		"title":       ogPattern("og:title"),
		"description": ogPattern("og:description"),
		"site_name":   ogPattern("og:site_name"),
		"width":       ogPattern("og:image:width"),
		"height":      ogPattern("og:image:height"),
	}
	titlePattern = regexp.MustCompile(`(?i)<title[^>]*>([^<]*)</title>`)
)

func ogPattern(property string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<meta[^>]*property="` + regexp.QuoteMeta(property) + `"[^>]*content="([^"]*)"[^>]*>`)
}

// Parse implements Parser.
func (PatternParser) Parse(body string) Metadata {
	var m Metadata

	m.ImageURL = matchField(body, "image")
	m.Title = matchField(body, "title")
	m.Description = matchField(body, "description")
	m.SiteName = matchField(body, "site_name")
	m.ImageWidth = parseDimension(matchField(body, "width"))
	m.ImageHeight = parseDimension(matchField(body, "height"))

	if m.Title == "" {
		if match := titlePattern.FindStringSubmatch(body); len(match) > 1 {
			m.Title = strings.TrimSpace(match[1])
		}
	}

	return m
}

func matchField(body, key string) string {
	match := ogPatterns[key].FindStringSubmatch(body)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// leadingInt matches the integer prefix of values like "1200px" or "630.0"
var leadingInt = regexp.MustCompile(`^[+-]?\d+`)

// parseDimension reads the leading integer of s. Values without one, and
// zero, stay unset.
func parseDimension(s string) *int {
	digits := leadingInt.FindString(strings.TrimSpace(s))
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n == 0 {
		return nil
	}
	return &n
}

var _ Parser = PatternParser{}
