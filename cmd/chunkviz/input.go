package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/mattn/go-isatty"

	"github.com/shivavenkatesh/chunkviz/internal/chunking"
	"github.com/shivavenkatesh/chunkviz/internal/samples"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// errBinaryInput is returned for input that is not text
var errBinaryInput = errors.New("input is not a text file")

// maxReadBytes bounds how much input is read; the pipeline truncates by characters afterwards
var maxReadBytes int64 = 64 << 20

// input is a document to chunk with the content type it was detected as
type input struct {
	Name        string
	Text        string
	ContentType types.ContentType // empty when nothing could be inferred
	Truncated   bool              // cut at maxReadBytes
}

// readInput loads a built-in sample, the file named by args[0], or stdin.
// With no argument and an interactive stdin the default sample is used.
func readInput(args []string, sample string, stdin io.Reader) (*input, error) {
	if sample == "" && len(args) == 0 && isTerminal(stdin) {
		sample = samples.Default
	}
	if sample != "" {
		s, err := samples.Get(sample)
		if err != nil {
			return nil, err
		}
		return &input{Name: "sample:" + s.Name, Text: s.Text, ContentType: s.ContentType}, nil
	}

	if len(args) == 0 || args[0] == "-" {
		data, truncated, err := readLimited(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if err := checkText(data); err != nil {
			return nil, err
		}
		return &input{Name: "stdin", Text: string(data), Truncated: truncated}, nil
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	data, truncated, err := readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := checkText(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &input{
		Name:        path,
		Text:        string(data),
		ContentType: chunking.DetectContentType(path),
		Truncated:   truncated,
	}, nil
}

// readLimited reads up to maxReadBytes, reporting whether more was available.
// A cut never splits a UTF-8 sequence.
func readLimited(r io.Reader) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxReadBytes+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) <= maxReadBytes {
		return data, false, nil
	}

	data = data[:maxReadBytes]
	for i := 0; i < utf8.UTFMax-1 && len(data) > 0; i++ {
		r, size := utf8.DecodeLastRune(data)
		if r != utf8.RuneError || size != 1 {
			break
		}
		data = data[:len(data)-1]
	}
	return data, true, nil
}

// isTerminal reports whether r is an interactive terminal
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// checkText rejects data whose detected MIME type does not descend from text/plain
func checkText(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return nil
		}
	}
	return fmt.Errorf("%w (detected %s, %s)", errBinaryInput, detected.String(), humanize.Bytes(uint64(len(data))))
}
