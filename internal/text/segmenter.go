// Package text segments normalized document text into bounded, overlapping
// chunks ready for embedding.
package text

import (
	"log/slog"
	"regexp"
	"strings"

	"papyrus/apps/backend/internal/document"
)

// Config controls segmentation. ChunkSize is the target maximum piece length,
// MaxChunkSize the hard ceiling before truncation, MinChunkSize the floor
// below which a candidate is dropped.
type Config struct {
	ChunkSize         int
	ChunkOverlap      int
	MaxChunkSize      int
	MinChunkSize      int
	PreserveStructure bool
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:         1000,
		ChunkOverlap:      200,
		MaxChunkSize:      2000,
		MinChunkSize:      100,
		PreserveStructure: true,
	}
}

// separators, coarsest boundary first. The empty string is the character-level
// fallback so no input can escape the cascade.
var separators = []string{
	"\n\n\n",
	"\n\n",
	"\n",
	". ",
	"! ",
	"? ",
	"; ",
	", ",
	" ",
	"",
}

type Segmenter struct {
	cfg Config
}

func NewSegmenter(cfg Config) *Segmenter {
	if cfg.ChunkSize <= 0 {
		cfg = DefaultConfig()
	}
	return &Segmenter{cfg: cfg}
}

// Segment splits a document's extracted text into chunks. It never fails:
// malformed input yields the basic split without structural enrichment, and
// empty input yields no chunks.
func (s *Segmenter) Segment(doc *document.Document) []document.Chunk {
	pre := Preprocess(doc.Text)
	if strings.TrimSpace(pre) == "" {
		return nil
	}

	pieces := s.split(pre, separators)
	chunks := s.assemble(doc, pre, pieces)

	if s.cfg.PreserveStructure {
		s.tagStructure(chunks)
	}
	return chunks
}

var (
	pageMarkerRe = regexp.MustCompile(`--- Page \d+( \(OCR\))? ---\n?`)
	nonASCIIRe   = regexp.MustCompile(`[^\x00-\x7F]+`)
	hspaceRe     = regexp.MustCompile(`[ \t]+`)
	trailingRe   = regexp.MustCompile(`(?m)[ \t]+$`)
	manyBreaksRe = regexp.MustCompile(`\n{4,}`)
)

// Preprocess normalizes raw extracted text: page markers and form feeds are
// stripped, non-ASCII runs become a single space, horizontal whitespace is
// collapsed, and runs of blank lines are capped so the separator cascade still
// sees paragraph boundaries.
func Preprocess(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = pageMarkerRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\x0c", "\n")
	text = nonASCIIRe.ReplaceAllString(text, " ")
	text = hspaceRe.ReplaceAllString(text, " ")
	text = trailingRe.ReplaceAllString(text, "")
	text = manyBreaksRe.ReplaceAllString(text, "\n\n\n")
	return strings.TrimSpace(text)
}

// split cuts text into pieces no longer than ChunkSize, trying the coarsest
// separator first and recursing with finer ones on oversized parts. The pieces
// concatenate back to the input exactly.
func (s *Segmenter) split(text string, seps []string) []string {
	if len(text) <= s.cfg.ChunkSize {
		return []string{text}
	}
	if len(seps) == 0 || seps[0] == "" {
		// Character fallback: hard windows.
		var out []string
		for len(text) > s.cfg.ChunkSize {
			out = append(out, text[:s.cfg.ChunkSize])
			text = text[s.cfg.ChunkSize:]
		}
		if text != "" {
			out = append(out, text)
		}
		return out
	}

	sep := seps[0]
	parts := strings.SplitAfter(text, sep)
	if len(parts) == 1 {
		return s.split(text, seps[1:])
	}

	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}

	for _, part := range parts {
		if len(part) > s.cfg.ChunkSize {
			flush()
			out = append(out, s.split(part, seps[1:])...)
			continue
		}
		if cur.Len()+len(part) > s.cfg.ChunkSize {
			flush()
		}
		cur.WriteString(part)
	}
	flush()
	return out
}

// assemble turns ordered pieces into chunks: each chunk repeats the trailing
// ChunkOverlap characters of its predecessor, candidates shorter than
// MinChunkSize are dropped, and anything over MaxChunkSize is hard-truncated.
// Indices are reassigned after filtering so they stay contiguous from 0.
func (s *Segmenter) assemble(doc *document.Document, pre string, pieces []string) []document.Chunk {
	method := "cascade"
	if !s.cfg.PreserveStructure {
		method = "basic"
	}

	chunks := make([]document.Chunk, 0, len(pieces))
	pos := 0
	for _, piece := range pieces {
		start := pos
		end := pos + len(piece)
		pos = end

		// Pull in trailing context from the preceding text.
		if s.cfg.ChunkOverlap > 0 && start > 0 {
			ov := s.cfg.ChunkOverlap
			if ov > start {
				ov = start
			}
			start -= ov
		}
		content := pre[start:end]

		if len(strings.TrimSpace(content)) < s.cfg.MinChunkSize {
			continue
		}
		if len(content) > s.cfg.MaxChunkSize {
			slog.Warn("chunk truncated to max size",
				"document_id", doc.ID, "original_length", len(content), "max_chunk_size", s.cfg.MaxChunkSize)
			content = content[:s.cfg.MaxChunkSize]
			end = start + len(content)
		}

		chunks = append(chunks, document.Chunk{
			ID:         chunkID(doc.ID, len(chunks)),
			DocumentID: doc.ID,
			Content:    strings.TrimSpace(content),
			Index:      len(chunks),
			StartChar:  start,
			EndChar:    end,
			Metadata: document.ChunkMetadata{
				DocumentTitle:  doc.Metadata.Title,
				DocumentSource: doc.OriginalName,
				ChunkMethod:    method,
				FileType:       doc.Metadata.FileType,
				PageCount:      doc.Metadata.PageCount,
			},
		})
	}
	return chunks
}

// tagStructure attaches descriptive header/list metadata to each chunk.
// Classification never moves a split boundary.
func (s *Segmenter) tagStructure(chunks []document.Chunk) {
	for i := range chunks {
		lines := strings.Split(chunks[i].Content, "\n")
		listItems := 0
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if chunks[i].Metadata.Heading == "" && IsHeader(line) {
				chunks[i].Metadata.Heading = line
			}
			if IsListItem(line) {
				listItems++
			}
		}
		chunks[i].Metadata.ListItems = listItems
	}
}
