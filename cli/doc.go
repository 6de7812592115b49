// Package cli implements the command-line interface for ogrelay.
//
// The root command fetches preview metadata for URLs given as arguments.
// Subcommands preview the links of a Markdown document, list relays and
// start the MCP server.
package cli
