package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"wikindex/internal/service"
)

func init() {
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newRunsCmd())
}

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <name>",
		Short: "Resolve a page name against the latest run",
		Long: `The lookup command prints the URI and breadcrumb trail stored for a page
name in the most recent indexing run.

Example:
  wikindex lookup a_story
  wikindex lookup a_story --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd.Context(), cmd, args[0])
		},
	}
}

func runLookup(ctx context.Context, cmd *cobra.Command, name string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	runs, resources, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	entry, err := service.NewResourceService(runs, resources).Lookup(ctx, name)
	if err != nil {
		return fmt.Errorf("lookup %q: %w", name, err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, entry)
	}
	renderEntry(out, entry)
	return nil
}

var runsLimit int

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored indexing runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			runs, _, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			records, err := runs.List(ctx, runsLimit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, records)
			}
			renderRuns(out, records)
			return nil
		},
	}
	cmd.Flags().IntVar(&runsLimit, "limit", 10, "Maximum number of runs to show")
	return cmd
}
