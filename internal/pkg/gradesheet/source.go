package gradesheet

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// TableSource supplies the tables of one stored document
type TableSource interface {
	Tables(ctx context.Context, path string) ([]Table, error)
}

// PDFTextSource extracts tables with poppler's pdftotext in layout mode.
// Each page is split into blocks of consecutive non-blank lines; cells are
// separated by two or more spaces.
type PDFTextSource struct {
	Binary string // defaults to "pdftotext"
}

// NewPDFTextSource creates a PDF table source using the given pdftotext binary
func NewPDFTextSource(binary string) *PDFTextSource {
	if binary == "" {
		binary = "pdftotext"
	}
	return &PDFTextSource{Binary: binary}
}

// Tables runs pdftotext on the file and splits its output into tables
func (s *PDFTextSource) Tables(ctx context.Context, path string) ([]Table, error) {
	cmd := exec.CommandContext(ctx, s.Binary, "-layout", path, "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdf table extraction requires %q (install poppler-utils): %w: %s",
			s.Binary, err, strings.TrimSpace(stderr.String()))
	}
	return SplitLayoutText(string(out)), nil
}

var cellGap = regexp.MustCompile(` {2,}|\t+`)

// SplitLayoutText turns layout-preserving text into tables. Pages are
// separated by form feeds and tables by blank lines.
func SplitLayoutText(text string) []Table {
	var tables []Table
	for _, page := range strings.Split(text, "\f") {
		var current Table
		flush := func() {
			if len(current) > 0 {
				tables = append(tables, current)
				current = nil
			}
		}
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimRight(line, "\r")
			if strings.TrimSpace(line) == "" {
				flush()
				continue
			}
			var cells []string
			for _, c := range cellGap.Split(strings.TrimSpace(line), -1) {
				cells = append(cells, strings.TrimSpace(c))
			}
			current = append(current, cells)
		}
		flush()
	}
	return tables
}

// StaticSource serves fixed tables, for imports whose tables were extracted
// elsewhere (e.g. submitted as JSON)
type StaticSource []Table

// Tables returns the fixed tables regardless of path
func (s StaticSource) Tables(context.Context, string) ([]Table, error) {
	return s, nil
}
