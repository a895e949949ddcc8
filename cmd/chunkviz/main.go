// chunkviz - explore how text chunking strategies partition a document
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "dev"

	// Global flags
	cfgFile  string
	logLevel string
	verbose  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chunkviz",
	Short: "Visualize text chunking strategies",
	Long: `chunkviz splits text the way retrieval pipelines do and shows where the cuts land.

It supports a fixed-width splitter and a recursive splitter that prefers
paragraph, line and sentence boundaries for the given content type, maps every
chunk back onto the original text and highlights the overlap between neighbours.

Examples:
  # Split a file with the recursive splitter
  chunkviz split README.md --size 400 --overlap 40

  # Highlight chunks in the terminal
  chunkviz render notes.txt --size 200 --overlap 20

  # Compare statistics for fixed-width chunks
  chunkviz stats notes.txt --splitter fixed --size 300

  # Start the HTTP API and MCP server
  chunkviz serve`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default: chunkviz.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(separatorsCmd)
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(serveCmd)
}
