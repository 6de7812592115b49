package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/ka2n/ogrelay/api"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// maxDocumentPreviews caps the number of links one tool call may fetch
const maxDocumentPreviews = 50

var validate = validator.New()

// decodeArguments decodes and validates tool arguments into args. The
// returned result is non-nil when the arguments are rejected.
func decodeArguments(ctx context.Context, req mcp.CallToolRequest, args any) *mcp.CallToolResult {
	if err := mapstructure.Decode(req.Params.Arguments, args); err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	if err := validate.StructCtx(ctx, args); err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// FetchLinkMetadata fetches Open Graph metadata for one URL
func (s *Server) FetchLinkMetadata() (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"fetch_link_metadata",
			mcp.WithDescription("Fetch Open Graph preview metadata (image, title, description, site name) for a web page"),
			mcp.WithString("url", mcp.Required(), mcp.Description("Absolute http or https URL of the page")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				URL string `mapstructure:"url" validate:"required"`
			}
			var args ToolArguments
			if res := decodeArguments(ctx, req, &args); res != nil {
				return res, nil
			}

			result := s.fetcher.FetchMetadata(ctx, args.URL)
			if !result.Success {
				return mcp.NewToolResultError(result.Error), nil
			}
			return jsonResult(result)
		}
}

// FetchDocumentPreviews fetches metadata for the external links of a
// Markdown document
func (s *Server) FetchDocumentPreviews() (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"fetch_document_previews",
			mcp.WithDescription("Extract external links from a Markdown document and fetch preview metadata for each"),
			mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown document text")),
			mcp.WithNumber("max", mcp.Description(fmt.Sprintf("Maximum number of links to preview (default %d)", api.DefaultPreviewSettings.MaxImagesPerPage))),
			mcp.WithBoolean("use_cache", mcp.Description("Read and write the metadata cache (default true)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				Markdown string `mapstructure:"markdown" validate:"required"`
				Max      int    `mapstructure:"max" validate:"gte=0,lte=50"`
				UseCache *bool  `mapstructure:"use_cache"`
			}
			var args ToolArguments
			if res := decodeArguments(ctx, req, &args); res != nil {
				return res, nil
			}

			settings := api.DefaultPreviewSettings
			if args.Max > 0 {
				settings.MaxImagesPerPage = min(args.Max, maxDocumentPreviews)
			}
			if args.UseCache != nil {
				settings.CacheEnabled = *args.UseCache
			}

			previews := s.fetcher.FetchDocument(ctx, []byte(args.Markdown), settings)
			if previews == nil {
				previews = []api.LinkPreview{}
			}
			return jsonResult(previews)
		}
}

// ClearMetadataCache drops every cached metadata entry
func (s *Server) ClearMetadataCache() (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"clear_metadata_cache",
			mcp.WithDescription("Remove all cached link metadata so the next fetch goes to the network"),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			n := s.fetcher.Cache().Len()
			s.fetcher.ClearCache()
			return mcp.NewToolResultText(fmt.Sprintf("cleared %d cached entries", n)), nil
		}
}
