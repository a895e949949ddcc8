package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shivavenkatesh/chunkviz/internal/chunking"
	"github.com/shivavenkatesh/chunkviz/internal/samples"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

var separatorsJSON bool

var separatorsCmd = &cobra.Command{
	Use:   "separators [content-type]",
	Short: "List separators per content type",
	Long: `List the separators the recursive splitter tries, coarsest first.

Without an argument every content type is listed.

Examples:
  chunkviz separators
  chunkviz separators markdown`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeparators,
}

func init() {
	separatorsCmd.Flags().BoolVar(&separatorsJSON, "json", false, "Output JSON")
}

func runSeparators(cmd *cobra.Command, args []string) error {
	cts := chunking.ContentTypes()
	if len(args) == 1 {
		cts = []types.ContentType{types.ContentType(args[0])}
	}

	all := make(map[types.ContentType][]string, len(cts))
	for _, ct := range cts {
		seps, err := chunking.Separators(ct)
		if err != nil {
			return err
		}
		all[ct] = seps
	}

	out := cmd.OutOrStdout()
	if separatorsJSON {
		return writeJSON(out, all)
	}

	for _, ct := range cts {
		fmt.Fprintf(out, "%s:\n", ct)
		for _, sep := range all[ct] {
			fmt.Fprintf(out, "  %s\n", quoteSeparator(sep))
		}
	}
	return nil
}

// quoteSeparator renders a separator with escapes visible
func quoteSeparator(sep string) string {
	if sep == "" {
		return `"" (characters)`
	}
	return strconv.Quote(sep)
}

var samplesCmd = &cobra.Command{
	Use:   "samples [name]",
	Short: "List or print built-in sample documents",
	Long: `List the built-in sample documents, or print one of them.

Samples can be chunked directly with --sample on split, render and stats.

Examples:
  chunkviz samples
  chunkviz samples markdown > notes.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSamples,
}

func runSamples(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		s, err := samples.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(out, s.Text)
		return nil
	}

	for _, name := range samples.Names() {
		s, err := samples.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-12s %s\n", name, s.ContentType)
	}
	return nil
}
