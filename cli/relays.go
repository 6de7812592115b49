package cli

import (
	"fmt"

	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

var relaysCmd = &cobra.Command{
	Use:   "relays",
	Short: "List configured relay endpoints in priority order",
	Long:  "Display the relay endpoints that are tried, in order, for every fetch",
	RunE:  runRelays,
}

func init() {
	rootCmd.AddCommand(relaysCmd)
}

func runRelays(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return failure.Wrap(err)
	}
	registry, err := cfg.Registry()
	if err != nil {
		return failure.Wrap(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Relays:")
	for i, ep := range registry.Endpoints() {
		fmt.Fprintf(out, "  %d. %-12s %-9s %s\n", i+1, ep.Name, ep.Format, ep.Template)
	}
	fmt.Fprintf(out, "\nEach relay is tried %d time(s), timeout %s, retry delay %s\n",
		cfg.Fetch.RetryAttempts+1, cfg.Fetch.Timeout, cfg.Fetch.RetryDelay)
	return nil
}
