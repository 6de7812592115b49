package mcp

import (
	"github.com/ka2n/ogrelay/api"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

// Command returns the MCP server command. newFetcher is called once when the
// server starts.
func Command(newFetcher func() (*api.Fetcher, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Serve ogrelay tools over the Model Context Protocol on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher, err := newFetcher()
			if err != nil {
				return failure.Wrap(err)
			}
			return NewServer(fetcher).Run()
		},
	}
}
