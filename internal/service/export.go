package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/careerops-api/internal/editor"
)

// ErrUnknownFormat is returned for export formats other than txt and md.
var ErrUnknownFormat = errors.New("unknown export format")

const (
	FormatText     = "txt"
	FormatMarkdown = "md"
)

// Export is a rendered download.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportDocument renders the document as plain text or Markdown.
func ExportDocument(doc editor.Document, format, basename string) (*Export, error) {
	if basename == "" {
		basename = "resume"
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return &Export{
			Filename:    basename + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(doc.Text),
		}, nil
	case FormatMarkdown:
		return &Export{
			Filename:    basename + ".md",
			ContentType: "text/markdown; charset=utf-8",
			Body:        []byte(Markdown(doc)),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Markdown renders the preamble's first line as the title and every section
// as a second-level heading.
func Markdown(doc editor.Document) string {
	var blocks []string
	for _, s := range doc.Sections() {
		if s.Name == editor.PreambleSection {
			lines := strings.SplitN(s.Body, "\n", 2)
			block := "# " + strings.TrimSpace(lines[0])
			if len(lines) > 1 {
				block += "\n\n" + strings.TrimSpace(lines[1])
			}
			blocks = append(blocks, block)
			continue
		}
		block := "## " + s.Name
		if s.Body != "" {
			block += "\n\n" + s.Body
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n") + "\n"
}
