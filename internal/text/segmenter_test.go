package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papyrus/apps/backend/internal/document"
)

func testDoc(text string) *document.Document {
	return &document.Document{
		ID:           "doc-1",
		OriginalName: "report.pdf",
		Text:         text,
		Metadata: document.Metadata{
			Title:    "Annual Report",
			FileType: "pdf",
		},
	}
}

func TestPreprocess(t *testing.T) {
	t.Run("strips page markers", func(t *testing.T) {
		in := "--- Page 1 ---\nAlpha\n--- Page 2 (OCR) ---\nBeta"
		out := Preprocess(in)
		assert.NotContains(t, out, "Page 1")
		assert.Contains(t, out, "Alpha")
		assert.Contains(t, out, "Beta")
	})

	t.Run("strips non-ascii and form feeds", func(t *testing.T) {
		out := Preprocess("café\x0cnext")
		assert.NotContains(t, out, "é")
		assert.NotContains(t, out, "\x0c")
		assert.Contains(t, out, "next")
	})

	t.Run("collapses horizontal whitespace but keeps paragraph breaks", func(t *testing.T) {
		out := Preprocess("a   b\t\tc\n\nsecond   paragraph")
		assert.Equal(t, "a b c\n\nsecond paragraph", out)
	})

	t.Run("caps runs of blank lines", func(t *testing.T) {
		out := Preprocess("a\n\n\n\n\n\nb")
		assert.Equal(t, "a\n\n\nb", out)
	})
}

func TestSegment_SmallTextSingleChunk(t *testing.T) {
	s := NewSegmenter(Config{ChunkSize: 200, ChunkOverlap: 20, MaxChunkSize: 400, MinChunkSize: 10})
	chunks := s.Segment(testDoc("A short paragraph that easily fits in one chunk."))
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "doc-1", chunks[0].DocumentID)
	assert.Equal(t, "Annual Report", chunks[0].Metadata.DocumentTitle)
	assert.Equal(t, "report.pdf", chunks[0].Metadata.DocumentSource)
}

func TestSegment_EmptyTextYieldsNoChunks(t *testing.T) {
	s := NewSegmenter(DefaultConfig())
	assert.Empty(t, s.Segment(testDoc("")))
	assert.Empty(t, s.Segment(testDoc("   \n\n  ")))
}

func TestSegment_IndicesContiguous(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("This is sentence number one of the paragraph. It keeps going for a while longer here.\n\n")
	}
	s := NewSegmenter(Config{ChunkSize: 300, ChunkOverlap: 50, MaxChunkSize: 600, MinChunkSize: 20})
	chunks := s.Segment(testDoc(b.String()))
	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestSegment_CoverageWithoutGaps(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("Coverage sentences follow each other densely without any short stragglers at all. ")
	}
	text := b.String()
	s := NewSegmenter(Config{ChunkSize: 250, ChunkOverlap: 40, MaxChunkSize: 600, MinChunkSize: 1})
	doc := testDoc(text)
	chunks := s.Segment(doc)
	require.NotEmpty(t, chunks)

	pre := Preprocess(text)
	// Chunk spans must tile the preprocessed text: each chunk starts at or
	// before the previous end (overlap) and the union covers everything.
	assert.Equal(t, 0, chunks[0].StartChar)
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i].StartChar, chunks[i-1].EndChar, "gap before chunk %d", i)
	}
	assert.Equal(t, len(pre), chunks[len(chunks)-1].EndChar)
}

func TestSegment_OverlapSharedBetweenNeighbors(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("Every sentence in this block is reasonably long and contributes characters steadily. ")
	}
	s := NewSegmenter(Config{ChunkSize: 300, ChunkOverlap: 60, MaxChunkSize: 600, MinChunkSize: 1})
	chunks := s.Segment(testDoc(b.String()))
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		overlap := chunks[i-1].EndChar - chunks[i].StartChar
		assert.Greater(t, overlap, 0, "chunk %d shares no context with its predecessor", i)
		assert.LessOrEqual(t, overlap, 60)
	}
}

func TestSegment_RespectsSizeBounds(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("Bounded chunk size requirements are validated by this repetitive filler sentence here. ")
	}
	cfg := Config{ChunkSize: 200, ChunkOverlap: 30, MaxChunkSize: 260, MinChunkSize: 50}
	s := NewSegmenter(cfg)
	chunks := s.Segment(testDoc(b.String()))
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.GreaterOrEqual(t, len(strings.TrimSpace(c.Content)), cfg.MinChunkSize)
		assert.LessOrEqual(t, c.EndChar-c.StartChar, cfg.MaxChunkSize)
	}
}

func TestSegment_DropsShortCandidates(t *testing.T) {
	// A long paragraph followed by a tiny straggler separated by blank lines.
	long := strings.Repeat("A meaningful sentence carrying useful content for the index. ", 6)
	text := long + "\n\n\nok"
	s := NewSegmenter(Config{ChunkSize: 400, ChunkOverlap: 0, MaxChunkSize: 800, MinChunkSize: 50})
	chunks := s.Segment(testDoc(text))
	for _, c := range chunks {
		assert.GreaterOrEqual(t, len(strings.TrimSpace(c.Content)), 50)
	}
}

func TestSegment_TruncatesOversized(t *testing.T) {
	// One unbroken run with no separators at all forces the character fallback.
	text := strings.Repeat("x", 5000)
	s := NewSegmenter(Config{ChunkSize: 1000, ChunkOverlap: 200, MaxChunkSize: 1100, MinChunkSize: 10})
	chunks := s.Segment(testDoc(text))
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 1100)
	}
}

func TestSegment_CascadePrefersParagraphBoundaries(t *testing.T) {
	para1 := strings.Repeat("First paragraph sentence with some length to it. ", 4)
	para2 := strings.Repeat("Second paragraph sentence also fairly long indeed. ", 4)
	text := strings.TrimSpace(para1) + "\n\n" + strings.TrimSpace(para2)
	s := NewSegmenter(Config{ChunkSize: 250, ChunkOverlap: 0, MaxChunkSize: 500, MinChunkSize: 10})
	chunks := s.Segment(testDoc(text))
	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0].Content, "First paragraph")
	assert.Contains(t, chunks[1].Content, "Second paragraph")
	assert.NotContains(t, chunks[0].Content, "Second paragraph")
}

func TestSegment_StructureTagging(t *testing.T) {
	text := "INTRODUCTION\nThis section introduces the work in enough words to clear the minimum floor.\n" +
		"- first item on the list\n- second item on the list\n- third item on the list"
	s := NewSegmenter(Config{ChunkSize: 500, ChunkOverlap: 0, MaxChunkSize: 1000, MinChunkSize: 10, PreserveStructure: true})
	chunks := s.Segment(testDoc(text))
	require.Len(t, chunks, 1)
	assert.Equal(t, "INTRODUCTION", chunks[0].Metadata.Heading)
	assert.Equal(t, 3, chunks[0].Metadata.ListItems)
	assert.Equal(t, "cascade", chunks[0].Metadata.ChunkMethod)
}

func TestSegment_BasicMethodWithoutStructure(t *testing.T) {
	text := strings.Repeat("Plain content without any structure detection applied to it at all. ", 3)
	s := NewSegmenter(Config{ChunkSize: 500, ChunkOverlap: 0, MaxChunkSize: 1000, MinChunkSize: 10, PreserveStructure: false})
	chunks := s.Segment(testDoc(text))
	require.Len(t, chunks, 1)
	assert.Equal(t, "basic", chunks[0].Metadata.ChunkMethod)
	assert.Empty(t, chunks[0].Metadata.Heading)
}

func TestIsHeader(t *testing.T) {
	assert.True(t, IsHeader("INTRODUCTION AND SCOPE"))
	assert.True(t, IsHeader("1. Background"))
	assert.True(t, IsHeader("Methods:"))
	assert.True(t, IsHeader("Chapter 3"))
	assert.True(t, IsHeader("Section 12"))
	assert.False(t, IsHeader("a normal sentence of prose that goes on"))
	assert.False(t, IsHeader(strings.Repeat("A", 120)))
}

func TestListClassification(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"- bullet entry", "bullet"},
		{"* starred entry", "bullet"},
		{"3. numbered entry", "numbered"},
		{"b) lettered entry", "lettered"},
		{"iv. roman entry", "roman"},
		{"prose line", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ListType(tt.line), tt.line)
		if tt.want != "unknown" {
			assert.True(t, IsListItem(tt.line), tt.line)
		}
	}
}
