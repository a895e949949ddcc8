package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/shivavenkatesh/chunkviz/internal/chunking"
	"github.com/shivavenkatesh/chunkviz/internal/highlight"
	"github.com/shivavenkatesh/chunkviz/internal/pipeline"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// chunkFlags are shared by every command that runs the pipeline
type chunkFlags struct {
	size        int
	overlap     int
	splitter    string
	contentType string
	sample      string
	json        bool
}

func (f *chunkFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.size, "size", "s", 0, "Chunk size in characters (default: from config)")
	cmd.Flags().IntVarP(&f.overlap, "overlap", "o", 0, "Characters shared by consecutive chunks (default: from config)")
	cmd.Flags().StringVar(&f.splitter, "splitter", "", "Splitter: fixed or recursive (default: from config)")
	cmd.Flags().StringVarP(&f.contentType, "type", "t", "", "Content type for separators (default: from file extension)")
	cmd.Flags().StringVar(&f.sample, "sample", "", "Use a built-in sample document instead of a file")
	cmd.Flags().BoolVar(&f.json, "json", false, "Output JSON")
}

// params merges explicit flags over the configured defaults and the detected content type
func (f *chunkFlags) params(cmd *cobra.Command, defaults types.Params, in *input) types.Params {
	p := defaults
	if in.ContentType != "" {
		p.ContentType = in.ContentType
	}
	if cmd.Flags().Changed("size") {
		p.ChunkSize = f.size
	}
	if cmd.Flags().Changed("overlap") {
		p.ChunkOverlap = f.overlap
	} else if p.ChunkOverlap >= p.ChunkSize {
		// configured overlap does not fit a smaller --size
		p.ChunkOverlap = p.ChunkSize / 10
	}
	if cmd.Flags().Changed("splitter") {
		p.Splitter = types.SplitterKind(f.splitter)
	}
	if cmd.Flags().Changed("type") {
		p.ContentType = types.ContentType(f.contentType)
	}
	return p
}

// compute reads input and runs it through the pipeline service
func (f *chunkFlags) compute(cmd *cobra.Command, args []string) (*types.Result, *input, error) {
	svc, _, log, err := initService()
	if err != nil {
		return nil, nil, err
	}

	in, err := readInput(args, f.sample, cmd.InOrStdin())
	if err != nil {
		return nil, nil, err
	}
	warnReadLimit(cmd, in)

	params := f.params(cmd, svc.Defaults(), in)
	ctx := log.With().Str("input", in.Name).Logger().WithContext(context.Background())

	res, err := svc.Compute(ctx, types.ComputeRequest{Text: in.Text, Params: params})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute chunks: %w", err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	return res, in, nil
}

var (
	splitFlags chunkFlags
	splitTrim  bool
)

var splitCmd = &cobra.Command{
	Use:   "split [file]",
	Short: "Split text into chunks",
	Long: `Split a file (or stdin) into chunks and print each chunk with its offsets.

Examples:
  chunkviz split notes.md --size 300 --overlap 30
  cat notes.txt | chunkviz split --splitter fixed --size 100
  chunkviz split main.go --json
  chunkviz split --sample python --size 120`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSplit,
}

func init() {
	splitFlags.register(splitCmd)
	splitCmd.Flags().BoolVar(&splitTrim, "trim", false, "Trim whitespace around recursive chunks and drop blank ones (offsets are not shown)")
}

func runSplit(cmd *cobra.Command, args []string) error {
	if splitTrim {
		return runSplitTrimmed(cmd, args)
	}

	res, _, err := splitFlags.compute(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if splitFlags.json {
		return writeJSON(out, res)
	}

	if len(res.Reconstructed) == 0 {
		fmt.Fprintln(out, "No chunks (empty input)")
		return nil
	}
	for _, c := range res.Reconstructed {
		fmt.Fprintf(out, "── chunk %d [%d, %d) %d chars, overlap with next %d\n",
			c.ID, c.StartIndex, c.EndIndex, c.EndIndex-c.StartIndex, c.OverlapWithNext)
		fmt.Fprintln(out, c.Text)
	}
	return nil
}

// runSplitTrimmed runs the recursive splitter without preserving whitespace.
// Trimmed chunks no longer map onto the source, so only the chunk texts are printed.
func runSplitTrimmed(cmd *cobra.Command, args []string) error {
	svc, cfg, _, err := initService()
	if err != nil {
		return err
	}
	in, err := readInput(args, splitFlags.sample, cmd.InOrStdin())
	if err != nil {
		return err
	}
	warnReadLimit(cmd, in)

	p := chunking.NormalizeParams(splitFlags.params(cmd, svc.Defaults(), in))
	if p.Splitter != types.SplitterRecursive {
		return fmt.Errorf("--trim requires the recursive splitter")
	}
	if err := chunking.ValidateParams(p); err != nil {
		return err
	}
	var warnings []string
	text, truncated := pipeline.Truncate(in.Text, cfg.Engine.MaxInputLength)
	if truncated {
		w := fmt.Sprintf("input truncated to %d characters", cfg.Engine.MaxInputLength)
		warnings = append(warnings, w)
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	seps, err := svc.Separators(p.ContentType)
	if err != nil {
		return err
	}

	chunks, err := chunking.SplitRecursive(text, p.ChunkSize, p.ChunkOverlap, seps, chunking.RecursiveOptions{PreserveWhitespace: false})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if splitFlags.json {
		return writeJSON(out, map[string]any{"params": p, "chunks": chunks, "truncated": truncated, "warnings": warnings})
	}
	for i, c := range chunks {
		fmt.Fprintf(out, "── chunk %d, %d chars\n%s\n", i+1, len([]rune(c)), c)
	}
	return nil
}

var (
	renderFlags chunkFlags
	renderHTML  bool
	renderPage  bool
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Highlight chunks and overlaps",
	Long: `Render the text with each chunk's unique part colored and overlaps highlighted.

By default the output is colored for the terminal. With --html the highlight
markup (unique-span-N and overlap-span classes) is printed instead; add --page
for a standalone HTML page including the palette stylesheet.

Examples:
  chunkviz render essay.txt --size 200 --overlap 40
  chunkviz render essay.txt --html --page > chunks.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderFlags.register(renderCmd)
	renderCmd.Flags().BoolVar(&renderHTML, "html", false, "Output HTML markup instead of terminal colors")
	renderCmd.Flags().BoolVar(&renderPage, "page", false, "With --html, wrap the markup in a standalone page")
}

func runRender(cmd *cobra.Command, args []string) error {
	res, in, err := renderFlags.compute(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case renderFlags.json:
		return writeJSON(out, res.Highlight)
	case renderHTML && renderPage:
		fmt.Fprintf(out, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>\n%s</style>\n</head>\n<body>\n<pre style=\"white-space: pre-wrap\">%s</pre>\n</body>\n</html>\n",
			html.EscapeString(in.Name), highlight.StyleSheet(), res.Highlight.Markup)
	case renderHTML:
		fmt.Fprintln(out, res.Highlight.Markup)
	default:
		fmt.Fprintln(out, highlight.RenderANSI(res.Reconstructed))
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d chunks, %d boundary mismatches\n",
		res.Statistics.Count, res.Highlight.BoundaryMismatchCount)
	return nil
}

var statsFlags chunkFlags

var statsCmd = &cobra.Command{
	Use:   "stats [file]",
	Short: "Show chunk statistics",
	Long: `Show chunk count, average/min/max length and the min/max ratio.

Token counts are included when an encoding is configured (engine.token_encoding).

Examples:
  chunkviz stats notes.txt --size 500
  chunkviz stats main.go --splitter fixed --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	statsFlags.register(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	res, in, err := statsFlags.compute(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if statsFlags.json {
		return writeJSON(out, res.Statistics)
	}

	s := res.Statistics
	p := res.Params
	fmt.Fprintf(out, "Input:        %s (%s characters)\n", in.Name, humanize.Comma(int64(res.InputLength)))
	fmt.Fprintf(out, "Splitter:     %s, %s, size %d, overlap %d\n", p.Splitter, p.ContentType, p.ChunkSize, p.ChunkOverlap)
	fmt.Fprintf(out, "Chunks:       %s\n", humanize.Comma(int64(s.Count)))
	fmt.Fprintf(out, "Total chars:  %s\n", humanize.Comma(int64(s.TotalChars)))
	fmt.Fprintf(out, "Average:      %s\n", humanize.FormatFloat("#,###.##", s.Average))
	fmt.Fprintf(out, "Min / Max:    %d / %d (%d%%)\n", s.Min, s.Max, s.RatioPercent)
	fmt.Fprintf(out, "Mismatches:   %d\n", res.Highlight.BoundaryMismatchCount)
	if s.Tokens != nil {
		fmt.Fprintf(out, "Tokens:       %s total, %d-%d per chunk (%s)\n",
			humanize.Comma(int64(s.Tokens.Total)), s.Tokens.Min, s.Tokens.Max, s.Tokens.Encoding)
	}
	return nil
}

// warnReadLimit reports input that was cut before it reached the pipeline
func warnReadLimit(cmd *cobra.Command, in *input) {
	if in.Truncated {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s read only up to %s\n", in.Name, humanize.IBytes(uint64(maxReadBytes)))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
