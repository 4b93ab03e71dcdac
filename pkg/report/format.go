// Package report renders selected file metrics as JSON, HTML, YAML, or text.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/plotpage"
)

// Format is an output format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// DefaultHTMLFile is where HTML reports go when no output path is given.
const DefaultHTMLFile = "repo_analysis.html"

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatHTML, FormatYAML, FormatText}
}

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))

	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// DefaultOutput returns the default destination for f: a file for HTML, stdout
// ("") for everything else.
func DefaultOutput(f Format) string {
	if f == FormatHTML {
		return DefaultHTMLFile
	}

	return ""
}

// Options tune rendering.
type Options struct {
	// Extensions are the analyzed extensions, mentioned in the HTML intro.
	Extensions []string
	// Threshold is the N used for selection, shown in the HTML intro.
	Threshold int
	// Theme selects the HTML theme.
	Theme plotpage.Theme
}

// Render writes metrics to w in format f.
func Render(w io.Writer, f Format, metrics []churn.FileMetric, o Options) error {
	switch f {
	case FormatJSON:
		return RenderJSON(w, metrics)
	case FormatHTML:
		return RenderHTML(w, metrics, o)
	case FormatYAML:
		return RenderYAML(w, metrics)
	case FormatText:
		return RenderText(w, metrics)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}
