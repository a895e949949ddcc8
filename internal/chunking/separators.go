package chunking

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// Content types with a dedicated separator set
const (
	ContentTypeMarkdown   types.ContentType = "markdown"
	ContentTypeGo         types.ContentType = "go"
	ContentTypePython     types.ContentType = "python"
	ContentTypeJavaScript types.ContentType = "javascript"
	ContentTypeTypeScript types.ContentType = "typescript"
	ContentTypeRust       types.ContentType = "rust"
	ContentTypeJava       types.ContentType = "java"
	ContentTypeC          types.ContentType = "c"
	ContentTypeCPP        types.ContentType = "cpp"
	ContentTypeHTML       types.ContentType = "html"
	ContentTypeLaTeX      types.ContentType = "latex"
)

// separatorPolicy is read-only after init. Lists run coarsest to finest and end
// with "" (character level). A separator stays attached to the start of the
// fragment that follows it.
var separatorPolicy = map[types.ContentType][]string{
	types.ContentTypeText: {"\n\n", "\n", ". ", "! ", "? ", " ", ""},

	ContentTypeMarkdown: {
		"\n# ", "\n## ", "\n### ", "\n#### ", "\n##### ", "\n###### ",
		"\n```", "\n---", "\n***",
		"\n\n", "\n", " ", "",
	},
	ContentTypeGo: {
		"\nfunc ", "\nvar ", "\nconst ", "\ntype ",
		"\nif ", "\nfor ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	ContentTypePython: {
		"\nclass ", "\ndef ", "\n\tdef ", "\n    def ",
		"\n\n", "\n", " ", "",
	},
	ContentTypeJavaScript: {
		"\nfunction ", "\nconst ", "\nlet ", "\nvar ", "\nclass ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ", "\ndefault ",
		"\n\n", "\n", " ", "",
	},
	ContentTypeTypeScript: {
		"\nenum ", "\ninterface ", "\nnamespace ", "\ntype ", "\nclass ",
		"\nfunction ", "\nconst ", "\nlet ", "\nvar ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ", "\ndefault ",
		"\n\n", "\n", " ", "",
	},
	ContentTypeRust: {
		"\nfn ", "\nconst ", "\nlet ",
		"\nif ", "\nwhile ", "\nfor ", "\nloop ", "\nmatch ",
		"\n\n", "\n", " ", "",
	},
	ContentTypeJava: {
		"\nclass ", "\npublic ", "\nprotected ", "\nprivate ", "\nstatic ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	ContentTypeC: {
		"\nstruct ", "\nvoid ", "\nint ", "\nfloat ", "\ndouble ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	ContentTypeCPP: {
		"\nclass ", "\nvoid ", "\nint ", "\nfloat ", "\ndouble ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	ContentTypeHTML: {
		"<body", "<div", "<p", "<br", "<li",
		"<h1", "<h2", "<h3", "<h4", "<h5", "<h6",
		"<span", "<table", "<tr", "<td", "<th", "<ul", "<ol",
		"<header", "<footer", "<nav", "<head", "<style", "<script", "<meta", "<title",
		"\n\n", "\n", " ", "",
	},
	ContentTypeLaTeX: {
		"\n\\chapter{", "\n\\section{", "\n\\subsection{", "\n\\subsubsection{",
		"\n\\begin{enumerate}", "\n\\begin{itemize}", "\n\\begin{description}",
		"\n\\begin{list}", "\n\\begin{quote}", "\n\\begin{quotation}",
		"\n\\begin{verse}", "\n\\begin{verbatim}", "\n\\begin{align}",
		"$$", "$",
		"\n\n", "\n", " ", "",
	},
}

// Separators returns a copy of the ordered separator set for a content type
func Separators(ct types.ContentType) ([]string, error) {
	if ct == "" {
		ct = DefaultContentType
	}
	seps, ok := separatorPolicy[ct]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownContentType, ct)
	}
	out := make([]string, len(seps))
	copy(out, seps)
	return out, nil
}

// ContentTypes lists every content type the policy knows, sorted
func ContentTypes() []types.ContentType {
	out := make([]types.ContentType, 0, len(separatorPolicy))
	for ct := range separatorPolicy {
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DetectContentType maps a file path's extension to a content type
func DetectContentType(path string) types.ContentType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return ContentTypeMarkdown
	case ".go":
		return ContentTypeGo
	case ".py":
		return ContentTypePython
	case ".js", ".jsx", ".mjs", ".cjs":
		return ContentTypeJavaScript
	case ".ts", ".tsx":
		return ContentTypeTypeScript
	case ".rs":
		return ContentTypeRust
	case ".java":
		return ContentTypeJava
	case ".c", ".h":
		return ContentTypeC
	case ".cpp", ".cc", ".cxx", ".hpp":
		return ContentTypeCPP
	case ".html", ".htm":
		return ContentTypeHTML
	case ".tex":
		return ContentTypeLaTeX
	default:
		return types.ContentTypeText
	}
}
