package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ka2n/ogrelay/api/relay"
)

const document = `# Reading list

- [First](https://example.com/1)
- [Second](https://example.com/2 "second post")
- [Local](./notes.md)
- [First again](https://EXAMPLE.com/1)
- [Missing image](https://example.com/none)

<a href="https://example.com/3">Third</a>
`

func documentFetcher(t *testing.T) (*Fetcher, *relayServer) {
	t.Helper()
	rs := newRelayServer(t)
	rs.handle("a", func(w http.ResponseWriter, _ *http.Request, target string) {
		if target == "https://example.com/none" {
			fmt.Fprint(w, `<title>none</title>`)
			return
		}
		fmt.Fprintf(w, `<meta property="og:image" content="%s.png">`, target)
	})
	f := NewFetcher(
		WithRegistry(relay.New(rs.endpoint("a", relay.FormatRawBody))),
		WithHTTPClient(rs.srv.Client()),
		WithFetchConfig(FetchConfig{RetryAttempts: 0}),
	)
	return f, rs
}

func TestPreviewTargets(t *testing.T) {
	tests := []struct {
		name     string
		settings PreviewSettings
		want     []string
	}{
		{
			name:     "Defaults",
			settings: DefaultPreviewSettings,
			want: []string{
				"https://example.com/1",
				"https://example.com/2",
				"https://example.com/none",
				"https://example.com/3",
			},
		},
		{
			name:     "Limited",
			settings: PreviewSettings{Enabled: true, ShowInPreview: true, MaxImagesPerPage: 2},
			want:     []string{"https://example.com/1", "https://example.com/2"},
		},
		{
			name:     "Disabled",
			settings: PreviewSettings{Enabled: false, ShowInPreview: true, MaxImagesPerPage: 10},
			want:     nil,
		},
		{
			name:     "Zero max",
			settings: PreviewSettings{Enabled: true, ShowInPreview: true, MaxImagesPerPage: 0},
			want:     nil,
		},
		{
			name:     "Negative max",
			settings: PreviewSettings{Enabled: true, ShowInPreview: true, MaxImagesPerPage: -1},
			want:     nil,
		},
		{
			name:     "Hidden in preview",
			settings: PreviewSettings{Enabled: true, ShowInPreview: false, MaxImagesPerPage: 10},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, l := range PreviewTargets([]byte(document), tt.settings) {
				got = append(got, l.URL)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("PreviewTargets() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchDocument(t *testing.T) {
	f, rs := documentFetcher(t)

	previews := f.FetchDocument(context.Background(), []byte(document), DefaultPreviewSettings)

	type row struct {
		URL     string
		Success bool
		Image   string
	}
	var got []row
	for _, p := range previews {
		r := row{URL: p.Link.URL, Success: p.Result.Success}
		if p.Result.Data != nil {
			r.Image = p.Result.Data.ImageURL
		}
		got = append(got, r)
	}

	want := []row{
		{URL: "https://example.com/1", Success: true, Image: "https://example.com/1.png"},
		{URL: "https://example.com/2", Success: true, Image: "https://example.com/2.png"},
		{URL: "https://example.com/none", Success: false},
		{URL: "https://example.com/3", Success: true, Image: "https://example.com/3.png"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FetchDocument() mismatch (-want +got):\n%s", diff)
	}
	if n := f.Cache().Len(); n != 3 {
		t.Errorf("cache entries = %d, want 3", n)
	}

	// a second pass is served from cache except for the failed link
	before := rs.total.Load()
	f.FetchDocument(context.Background(), []byte(document), DefaultPreviewSettings)
	if n := rs.total.Load() - before; n != 1 {
		t.Errorf("relay requests on second pass = %d, want 1", n)
	}
}

func TestFetchDocumentWithoutCache(t *testing.T) {
	f, _ := documentFetcher(t)

	settings := DefaultPreviewSettings
	settings.CacheEnabled = false
	f.FetchDocument(context.Background(), []byte(document), settings)

	if n := f.Cache().Len(); n != 0 {
		t.Errorf("cache entries = %d, want 0 with caching disabled", n)
	}
}

func TestFetchDocumentEmpty(t *testing.T) {
	f, rs := documentFetcher(t)
	if got := f.FetchDocument(context.Background(), []byte("   \n"), DefaultPreviewSettings); got != nil {
		t.Errorf("FetchDocument() on blank document = %v", got)
	}
	if rs.total.Load() != 0 {
		t.Error("blank document caused relay requests")
	}
}
