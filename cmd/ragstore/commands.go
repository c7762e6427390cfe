package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nyp-cnc/ragstore/matching"
	"github.com/nyp-cnc/ragstore/vectordb"
)

func newIngestCmd(configPath *string, development *bool) *cobra.Command {
	var (
		collection string
		include    []string
		exclude    []string
		maxSize    int
		dryRun     bool
	)
	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Ingest a file or directory into a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath, *development)
			if err != nil {
				return err
			}
			defer a.close()

			if len(include) > 0 || len(exclude) > 0 || maxSize > 0 {
				matcher := matching.New(
					matching.WithInclusions(include...),
					matching.WithExclusions(exclude...),
					matching.WithMaxFileSize(maxSize))
				a.pipeline = a.pipelineWithMatcher(matcher)
			}

			var store vectordb.VectorStore
			if !dryRun {
				s, err := a.registry.Collection(collection)
				if err != nil {
					return err
				}
				store = s
			}

			info, err := os.Stat(args[0])
			if err == nil && info.IsDir() {
				summary, err := a.pipeline.ProcessDir(cmd.Context(), args[0], store)
				if err != nil {
					return err
				}
				fmt.Printf("succeeded: %d  failed: %d  chunks: %d\n",
					summary.Succeeded, summary.Failed, summary.Chunks)
				for path, reason := range summary.Failures {
					fmt.Printf("  %s: %s\n", path, reason)
				}
				return nil
			}
			n, err := a.pipeline.Process(cmd.Context(), args[0], store)
			if err != nil {
				return err
			}
			fmt.Printf("processed: %d chunks\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&collection, "collection", "c", "default", "collection name")
	cmd.Flags().StringSliceVar(&include, "include", nil, "include patterns for directory runs")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "exclude patterns for directory runs")
	cmd.Flags().IntVar(&maxSize, "max-size", 0, "max file size in bytes")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "extract and chunk without persisting")
	return cmd
}

func newQueryCmd(configPath *string, development *bool) *cobra.Command {
	var (
		collection string
		k          int
		filter     []string
	)
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Query a collection by similarity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath, *development)
			if err != nil {
				return err
			}
			defer a.close()

			store, err := a.registry.Collection(collection)
			if err != nil {
				return err
			}
			results, err := store.Query(cmd.Context(), args[0], k, filter)
			if err != nil {
				return err
			}
			for i, doc := range results {
				fmt.Printf("%2d. %.4f  %s\n    %s\n", i+1, doc.Score, doc.ID, snippet(doc.Content))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&collection, "collection", "c", "default", "collection name")
	cmd.Flags().IntVarP(&k, "top", "k", 5, "number of results")
	cmd.Flags().StringSliceVar(&filter, "keywords", nil, "keyword pre-filter (any match)")
	return cmd
}

func newKeywordsCmd(configPath *string, development *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "Print the persisted keyword databank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath, *development)
			if err != nil {
				return err
			}
			defer a.close()
			for _, kw := range a.databank.Load() {
				fmt.Println(kw)
			}
			return nil
		},
	}
}

func snippet(content string) string {
	const max = 120
	if len(content) <= max {
		return content
	}
	return content[:max] + "..."
}
