package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ka2n/ogrelay/api"
	"github.com/ka2n/ogrelay/config"
	"github.com/ka2n/ogrelay/log"
	"github.com/ka2n/ogrelay/mcp"
	"github.com/morikuni/failure/v2"
	"github.com/pkg/browser"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	// Command line flags
	browserFlag bool
	jsonFlag    bool
	configFlag  string
	verboseFlag bool
	parserFlag  parserOverrideFlag

	// Root command
	rootCmd = &cobra.Command{
		Use:           "ogrelay [url...]",
		Short:         "Fetch Open Graph preview metadata through relays",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `ogrelay fetches Open Graph metadata (og:image, og:title, og:description,
og:site_name) for web pages. Pages are requested through a list of relay
endpoints, tried in order with retries, and successful results are cached.

Examples:
  ogrelay https://go.dev/blog/
  ogrelay --json https://go.dev/ https://pkg.go.dev/
  ogrelay doc README.md`,
		Args: func(cmd *cobra.Command, args []string) error {
			if cmd.CommandPath() != "ogrelay" {
				return nil
			}
			if len(args) < 1 {
				return failure.New(InvalidArguments,
					failure.Message("At least one URL is required"))
			}
			return nil
		},
		PersistentPreRun: applyVerbose,
		RunE:             runRoot,
	}

	// Version information
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Version command
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print detailed version information about ogrelay",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ogrelay version %s\n", lo.Ternary(Version == "dev", api.Version, Version))
			fmt.Fprintf(out, "  commit: %s\n", lo.Ternary(Commit == "none" && api.VersionCommit != "", api.VersionCommit, Commit))
			fmt.Fprintf(out, "  built:  %s\n", Date)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to a configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log relay requests and attempts")
	rootCmd.PersistentFlags().Var(&parserFlag, "parser", "Metadata parser to use (pattern or document)")
	rootCmd.Flags().BoolVarP(&browserFlag, "browser", "b", false, "Open the first preview image in browser")
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print results as JSON")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcp.Command(newFetcher))
}

// Run executes the main CLI functionality
func Run() error {
	return rootCmd.Execute()
}

// applyVerbose lowers the log level to Debug when --verbose is given
func applyVerbose(cmd *cobra.Command, args []string) {
	if verboseFlag {
		log.SetLevel(slog.LevelDebug)
	}
}

// loadConfig reads configuration and applies command line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if parserFlag.IsSet {
		cfg.Fetch.Parser = parserFlag.Value
	}
	return cfg, nil
}

func newFetcher() (*api.Fetcher, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.NewFetcher()
}

// urlResult is the JSON shape printed for each requested URL
type urlResult struct {
	URL string `json:"url"`
	api.FetchResult
}

func runRoot(cmd *cobra.Command, args []string) error {
	fetcher, err := newFetcher()
	if err != nil {
		return failure.Wrap(err)
	}

	results := make([]urlResult, 0, len(args))
	for _, u := range args {
		results = append(results, urlResult{
			URL:         u,
			FetchResult: fetcher.FetchMetadata(cmd.Context(), u),
		})
	}

	out := cmd.OutOrStdout()
	if jsonFlag {
		if err := writeJSON(out, results); err != nil {
			return failure.Wrap(err)
		}
	} else {
		rendered, err := renderMarkdown(resultsMarkdown(results))
		if err != nil {
			return failure.Wrap(err)
		}
		fmt.Fprint(out, rendered)
	}

	if browserFlag {
		if err := openFirstImage(out, results); err != nil {
			return err
		}
	}

	// Only the all-failed case is an error so partial output stays usable.
	if _, ok := lo.Find(results, func(r urlResult) bool { return r.Success }); !ok {
		return results[0].Err()
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openFirstImage opens the first found preview image in the default browser
func openFirstImage(w io.Writer, results []urlResult) error {
	found, ok := lo.Find(results, func(r urlResult) bool { return r.Success })
	if !ok {
		return failure.New(NoPreviewImage,
			failure.Message("No preview image to open"))
	}
	fmt.Fprintf(w, "Opening preview image in browser: %s\n", found.Data.ImageURL)
	browser.Stdout = os.Stderr
	if err := browser.OpenURL(found.Data.ImageURL); err != nil {
		return failure.Wrap(err, failure.WithCode(BrowserFailed),
			failure.Context{"url": found.Data.ImageURL})
	}
	return nil
}
