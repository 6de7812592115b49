// Package mcp implements the Model Context Protocol server for ogrelay.
//
// The server exposes link metadata fetching, document previews and cache
// control as MCP tools over stdio. One Fetcher is shared by all tool calls so
// cached results survive between them.
package mcp
