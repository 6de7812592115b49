package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ka2n/ogrelay/api"
	"github.com/ka2n/ogrelay/api/relay"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func newTestServer(t *testing.T) (*Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		target := r.URL.Query().Get("url")
		if target == "https://example.com/empty" {
			fmt.Fprint(w, "<title>nothing here</title>")
			return
		}
		fmt.Fprintf(w, `<meta property="og:image" content="%s/cover.png"><meta property="og:title" content="Page">`, target)
	}))
	t.Cleanup(srv.Close)

	fetcher := api.NewFetcher(
		api.WithRegistry(relay.New(relay.Endpoint{Name: "test", Template: srv.URL + "/?url="})),
		api.WithHTTPClient(srv.Client()),
		api.WithFetchConfig(api.FetchConfig{RetryAttempts: 0}),
	)
	return NewServer(fetcher), &calls
}

func callTool(t *testing.T, tool func() (mcp.Tool, server.ToolHandlerFunc), args map[string]any) (string, bool) {
	t.Helper()
	_, handler := tool()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("result content = %d items, want 1", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("result content type = %T, want mcp.TextContent", res.Content[0])
	}
	return text.Text, res.IsError
}

func TestTools(t *testing.T) {
	s, _ := newTestServer(t)

	var names []string
	for _, tool := range s.Tools() {
		names = append(names, tool.Tool.Name)
	}
	want := []string{"fetch_link_metadata", "fetch_document_previews", "clear_metadata_cache"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Tools() mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchLinkMetadata(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		wantText  string
	}{
		{
			name:     "Found",
			args:     map[string]any{"url": "https://example.com/post"},
			wantText: `{"success":true,"data":{"url":"https://example.com/post/cover.png","title":"Page"}}`,
		},
		{
			name:      "Invalid URL",
			args:      map[string]any{"url": "ftp://example.com"},
			wantError: true,
			wantText:  api.MessageInvalidURL,
		},
		{
			name:      "No metadata",
			args:      map[string]any{"url": "https://example.com/empty"},
			wantError: true,
			wantText:  api.MessageExhausted,
		},
		{
			name:      "Missing argument",
			args:      map[string]any{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			text, isError := callTool(t, s.FetchLinkMetadata, tt.args)
			if isError != tt.wantError {
				t.Errorf("IsError = %v, want %v (%s)", isError, tt.wantError, text)
			}
			if tt.wantText != "" && text != tt.wantText {
				t.Errorf("text = %s, want %s", text, tt.wantText)
			}
		})
	}
}

func TestFetchDocumentPreviews(t *testing.T) {
	s, calls := newTestServer(t)
	markdown := "[a](https://example.com/a) [b](https://example.com/b) [local](./c.md)"

	text, isError := callTool(t, s.FetchDocumentPreviews, map[string]any{
		"markdown": markdown,
		"max":      float64(1),
	})
	if isError {
		t.Fatalf("IsError = true: %s", text)
	}

	var previews []api.LinkPreview
	if err := json.Unmarshal([]byte(text), &previews); err != nil {
		t.Fatalf("Failed to decode previews: %v", err)
	}
	if len(previews) != 1 || previews[0].Link.URL != "https://example.com/a" || !previews[0].Result.Success {
		t.Errorf("previews = %+v", previews)
	}
	if calls.Load() != 1 {
		t.Errorf("relay calls = %d, want 1", calls.Load())
	}

	// without the cache the same link is fetched again
	callTool(t, s.FetchDocumentPreviews, map[string]any{
		"markdown":  markdown,
		"max":       float64(1),
		"use_cache": false,
	})
	if calls.Load() != 2 {
		t.Errorf("relay calls = %d, want 2", calls.Load())
	}

	if _, isError := callTool(t, s.FetchDocumentPreviews, map[string]any{"markdown": markdown, "max": float64(100)}); !isError {
		t.Error("max above limit was accepted")
	}

	text, _ = callTool(t, s.FetchDocumentPreviews, map[string]any{"markdown": "no links"})
	if text != "[]" {
		t.Errorf("text = %s, want []", text)
	}
}

func TestClearMetadataCache(t *testing.T) {
	s, calls := newTestServer(t)

	callTool(t, s.FetchLinkMetadata, map[string]any{"url": "https://example.com/post"})
	callTool(t, s.FetchLinkMetadata, map[string]any{"url": "https://example.com/post"})
	if calls.Load() != 1 {
		t.Fatalf("relay calls = %d, want 1 with a warm cache", calls.Load())
	}

	text, _ := callTool(t, s.ClearMetadataCache, nil)
	if text != "cleared 1 cached entries" {
		t.Errorf("text = %q", text)
	}

	callTool(t, s.FetchLinkMetadata, map[string]any{"url": "https://example.com/post"})
	if calls.Load() != 2 {
		t.Errorf("relay calls = %d, want 2 after clearing", calls.Load())
	}
}
