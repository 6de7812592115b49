package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ka2n/ogrelay/api"
	"github.com/mattn/go-isatty"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

var (
	docJSONFlag bool
	docMaxFlag  int

	docCmd = &cobra.Command{
		Use:   "doc <file.md|->",
		Short: "Preview every external link of a Markdown document",
		Long: `Extract the external links of a Markdown document and fetch preview
metadata for each of them. Use - to read the document from stdin.

When stdout is a terminal the previews are shown in a pager.`,
		Args: cobra.ExactArgs(1),
		RunE: runDoc,
	}
)

func init() {
	docCmd.Flags().BoolVar(&docJSONFlag, "json", false, "Print previews as JSON")
	docCmd.Flags().IntVarP(&docMaxFlag, "max", "n", 0, "Maximum number of links to preview (default from config)")
	rootCmd.AddCommand(docCmd)
}

func readDocument(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, failure.Wrap(err, failure.WithCode(DocumentRead),
				failure.Message("Failed to read document from stdin"))
		}
		return b, nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, failure.Wrap(err, failure.WithCode(DocumentRead),
			failure.Message("Failed to read document"),
			failure.Context{"path": name})
	}
	return b, nil
}

func runDoc(cmd *cobra.Command, args []string) error {
	markdown, err := readDocument(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return failure.Wrap(err)
	}
	fetcher, err := cfg.NewFetcher()
	if err != nil {
		return failure.Wrap(err)
	}

	settings := cfg.Preview
	if docMaxFlag > 0 {
		settings.MaxImagesPerPage = docMaxFlag
	}

	previews := fetcher.FetchDocument(cmd.Context(), markdown, settings)

	out := cmd.OutOrStdout()
	if docJSONFlag {
		if previews == nil {
			previews = []api.LinkPreview{}
		}
		return failure.Wrap(writeJSON(out, previews))
	}

	if len(previews) == 0 {
		fmt.Fprintln(out, "No external links to preview")
		return nil
	}

	content, offsets, err := renderPreviews(previews)
	if err != nil {
		return failure.Wrap(err)
	}

	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return failure.Wrap(RunPager(content, offsets))
	}
	fmt.Fprint(out, content)
	return nil
}
