package links

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []Link
	}{
		{
			name: "Markdown link with title",
			doc:  `See [Example](https://example.com/a "An example") for details.`,
			want: []Link{
				{URL: "https://example.com/a", Title: "An example", Text: "Example", External: true},
			},
		},
		{
			name: "Relative and external links in order",
			doc:  "- [docs](./docs.md)\n- [site](https://example.com)\n",
			want: []Link{
				{URL: "./docs.md", Text: "docs", External: false},
				{URL: "https://example.com", Text: "site", External: true},
			},
		},
		{
			name: "Emphasis inside link text",
			doc:  `[**Bold** name](https://example.com/b)`,
			want: []Link{
				{URL: "https://example.com/b", Text: "Bold name", External: true},
			},
		},
		{
			name: "Empty link text is skipped",
			doc:  `[](https://example.com/empty)`,
			want: nil,
		},
		{
			name: "Autolink",
			doc:  `Visit <https://example.com/auto>.`,
			want: []Link{
				{URL: "https://example.com/auto", Text: "https://example.com/auto", External: true},
			},
		},
		{
			name: "HTML anchor after markdown links",
			doc:  "<a href=\"https://example.com/html\">html link</a>\n\n[md](https://example.com/md)\n",
			want: []Link{
				{URL: "https://example.com/md", Text: "md", External: true},
				{URL: "https://example.com/html", Text: "html link", External: true},
			},
		},
		{
			name: "HTML anchor duplicating a markdown link",
			doc:  "[md](https://example.com/same)\n\n<a href='https://example.com/same'>again</a>\n",
			want: []Link{
				{URL: "https://example.com/same", Text: "md", External: true},
			},
		},
		{
			name: "Images are not links",
			doc:  `![alt](https://example.com/img.png)`,
			want: nil,
		},
		{
			name: "Image beside a link keeps only the link",
			doc:  "![screenshot](https://example.com/shot.png)\n\nRead [the post](https://example.com/post).",
			want: []Link{
				{URL: "https://example.com/post", Text: "the post", External: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract([]byte(tt.doc))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUniqueAndExternal(t *testing.T) {
	in := []Link{
		{URL: "https://Example.com", Text: "a", External: true},
		{URL: "mailto:someone@example.com", Text: "b", External: false},
		{URL: "https://example.com/", Text: "c", External: true},
		{URL: "https://example.com/page", Text: "d", External: true},
	}

	want := []Link{
		{URL: "https://Example.com", Text: "a", External: true},
		{URL: "https://example.com/page", Text: "d", External: true},
	}

	got := Unique(External(in))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unique(External()) mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"HTTPS://EXAMPLE.com":      "https://example.com/",
		"https://example.com/Path": "https://example.com/Path",
		"./relative":               "./relative",
		"mailto:a@b.c":             "mailto:a@b.c",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsExternal(t *testing.T) {
	tests := map[string]bool{
		"https://example.com": true,
		"http://example.com":  true,
		"ftp://example.com":   false,
		"/local/path":         false,
		"not a url":           false,
	}
	for in, want := range tests {
		if got := IsExternal(in); got != want {
			t.Errorf("IsExternal(%q) = %v, want %v", in, got, want)
		}
	}
}
