// Package extract pulls plain text and basic metadata out of PDF files.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"papyrus/apps/backend/internal/document"
)

var (
	ErrNotPDF    = errors.New("file is not a PDF")
	ErrEmptyFile = errors.New("file is empty")
)

// Result is the output of one extraction: the full text with page markers
// plus the metadata the file itself provides.
type Result struct {
	Text     string
	Metadata document.Metadata
}

type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract opens the PDF at path and returns its text page by page, each page
// prefixed with a marker the segmenter strips later. Title falls back to the
// original name when the PDF carries none.
func (e *PDFExtractor) Extract(ctx context.Context, path, originalName string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.Size() == 0 {
		return nil, ErrEmptyFile
	}
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return nil, fmt.Errorf("%w: %s", ErrNotPDF, filepath.Base(path))
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	numPages := r.NumPage()
	var buf strings.Builder
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// One unreadable page degrades, it does not fail the file.
			slog.WarnContext(ctx, "failed to extract page, skipping", "page", i, "file", originalName, "error", err)
			continue
		}
		fmt.Fprintf(&buf, "--- Page %d ---\n%s\n", i, text)
	}

	text := buf.String()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no extractable text in %s", originalName)
	}

	return &Result{
		Text: text,
		Metadata: document.Metadata{
			Title:     titleFor(r, originalName),
			Author:    trailerString(r, "Author"),
			FileSize:  info.Size(),
			FileType:  "pdf",
			PageCount: numPages,
		},
	}, nil
}

func titleFor(r *pdf.Reader, originalName string) string {
	if t := trailerString(r, "Title"); t != "" {
		return t
	}
	name := strings.TrimSuffix(originalName, filepath.Ext(originalName))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.TrimSpace(name)
}

func trailerString(r *pdf.Reader, key string) string {
	defer func() { recover() }() // malformed trailers panic inside the pdf library
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	v := info.Key(key)
	if v.Kind() != pdf.String {
		return ""
	}
	return strings.TrimSpace(v.RawString())
}
