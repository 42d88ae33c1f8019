package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wikindex/internal/config"
	"wikindex/internal/fetch"
	"wikindex/internal/indexer"
	"wikindex/internal/rest"
)

type indexOptions struct {
	root        string
	file        string
	source      string
	format      string
	nameKey     string
	childrenKey string
	rootName    string
	strict      bool
	username    string
	password    string
	timeout     time.Duration
	limit       int
}

var indexOpts indexOptions

func init() {
	cmd := newIndexCmd()
	cmd.Flags().StringVar(&indexOpts.root, "root", "", "URI prefix of every indexed page (required)")
	cmd.Flags().StringVar(&indexOpts.file, "file", "", "Read the hierarchy document from a local file")
	cmd.Flags().StringVar(&indexOpts.source, "source", "", "Fetch the hierarchy document from this URL (defaults to --root)")
	cmd.Flags().StringVar(&indexOpts.format, "format", rest.FormatXWiki, "Hierarchy format: json, xml, yaml or xwiki")
	cmd.Flags().StringVar(&indexOpts.nameKey, "name-key", rest.DefaultNameKey, "Field holding a node's name")
	cmd.Flags().StringVar(&indexOpts.childrenKey, "children-key", rest.DefaultChildrenKey, "Field holding a node's children")
	cmd.Flags().StringVar(&indexOpts.rootName, "root-name", "", "Breadcrumb segment for the top-level pages")
	cmd.Flags().BoolVar(&indexOpts.strict, "strict", false, "Fail when two pages share a name")
	cmd.Flags().StringVar(&indexOpts.username, "user", os.Getenv("XWIKI_USERNAME"), "Wiki username")
	cmd.Flags().StringVar(&indexOpts.password, "password", os.Getenv("XWIKI_PASSWORD"), "Wiki password")
	cmd.Flags().DurationVar(&indexOpts.timeout, "timeout", 10*time.Second, "Fetch timeout")
	cmd.Flags().IntVar(&indexOpts.limit, "limit", 0, "Show at most this many pages (0 shows all)")
	_ = cmd.MarkFlagRequired("root")
	cmd.MarkFlagsMutuallyExclusive("file", "source")
	rootCmd.AddCommand(cmd)
}

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Index a page hierarchy and store the run",
		Long: `The index command reads a hierarchy document, flattens it into a name
lookup and stores the result as a new run.

Example:
  wikindex index --root http://localhost:8080/xwiki/rest/wikis/xwiki/spaces/Main/pages
  wikindex index --root http://wiki/rest/pages --file tree.yaml --format yaml
  wikindex index --root http://wiki/rest/pages --file tree.json --format json --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), cmd, indexOpts)
		},
	}
}

func runIndex(ctx context.Context, cmd *cobra.Command, opts indexOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := &config.Config{
		Format:      opts.format,
		NameKey:     opts.nameKey,
		ChildrenKey: opts.childrenKey,
		RootName:    opts.rootName,
	}
	if opts.strict {
		cfg.CollisionPolicy = rest.RejectCollisions
	}

	var fetcher indexer.Fetcher
	source := opts.source
	if opts.file != "" {
		fetcher = fileFetcher{}
		source = opts.file
	} else {
		fetcher = fetch.NewClient(fetch.Options{
			Timeout:  opts.timeout,
			Username: opts.username,
			Password: opts.password,
			Breaker:  fetch.DefaultBreakerSettings(),
		})
	}

	runs, _, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	pipeline := indexer.NewPipeline(fetcher, runs, cfg.IndexerOptions, fetch.AcceptFor, indexer.Request{}, nil)
	result, err := pipeline.Run(ctx, indexer.Request{
		RootPath:  opts.root,
		SourceURL: source,
		Format:    opts.format,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, newRunOutput(result))
	}
	renderRun(out, result, opts.limit)
	return nil
}

// fileFetcher reads hierarchy documents from the local filesystem. The URL
// is the file path.
type fileFetcher struct{}

func (fileFetcher) Fetch(_ context.Context, path, _ string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
