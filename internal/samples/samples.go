// Package samples provides built-in example documents for exploring splitters
package samples

import (
	"embed"
	"errors"
	"fmt"
	"sort"

	"github.com/shivavenkatesh/chunkviz/internal/chunking"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// ErrUnknownSample is returned for a sample name that does not exist
var ErrUnknownSample = errors.New("unknown sample")

//go:embed data
var data embed.FS

// Sample is a built-in document with the content type it is written in
type Sample struct {
	Name        string            `json:"name"`
	ContentType types.ContentType `json:"content_type"`
	Text        string            `json:"text"`
}

var catalog = map[string]struct {
	file string
	ct   types.ContentType
}{
	"prose":      {"data/prose.txt", types.ContentTypeText},
	"javascript": {"data/javascript.js", chunking.ContentTypeJavaScript},
	"python":     {"data/python.py", chunking.ContentTypePython},
	"markdown":   {"data/markdown.md", chunking.ContentTypeMarkdown},
	"go":         {"data/go.txt", chunking.ContentTypeGo},
}

// Default is the sample the CLI reads when given no file and an interactive stdin
const Default = "prose"

// Names lists the available samples, sorted
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a sample by name
func Get(name string) (Sample, error) {
	entry, ok := catalog[name]
	if !ok {
		return Sample{}, fmt.Errorf("%w %q", ErrUnknownSample, name)
	}
	b, err := data.ReadFile(entry.file)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to read sample %s: %w", name, err)
	}
	return Sample{Name: name, ContentType: entry.ct, Text: string(b)}, nil
}
