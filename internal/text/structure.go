package text

import (
	"regexp"
	"strconv"

	"github.com/google/uuid"
)

var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z][A-Z\s]+$`),   // ALL CAPS line
	regexp.MustCompile(`^\d+\.\s+[A-Z]`),    // numbered section
	regexp.MustCompile(`^[A-Z][a-z]+:`),     // title case with colon
	regexp.MustCompile(`^Chapter\s+\d+`),    // chapter heading
	regexp.MustCompile(`^Section\s+\d+`),    // section heading
}

var listPatterns = map[string]*regexp.Regexp{
	"bullet":   regexp.MustCompile(`^\s*[-*\x{2022}]\s+`),
	"numbered": regexp.MustCompile(`^\s*\d+\.\s+`),
	"lettered": regexp.MustCompile(`^\s*[a-z]\)\s+`),
	"roman":    regexp.MustCompile(`^\s*[ivx]+\.\s+`),
}

// IsHeader reports whether a line is likely a section header. Headers are
// short; anything over 100 characters is treated as prose.
func IsHeader(line string) bool {
	if len(line) > 100 {
		return false
	}
	for _, p := range headerPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// HeaderLevel maps a header line onto a coarse level, 1 for ALL CAPS main
// headers down to 4 for anything else.
func HeaderLevel(line string) int {
	switch {
	case headerPatterns[0].MatchString(line):
		return 1
	case headerPatterns[1].MatchString(line):
		return 2
	case headerPatterns[2].MatchString(line):
		return 3
	default:
		return 4
	}
}

// IsListItem reports whether a line starts a bullet, numbered, lettered, or
// roman-numeral list entry.
func IsListItem(line string) bool {
	for _, p := range listPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// ListType returns the list style of a line, or "unknown" if it is not a
// recognized list item.
func ListType(line string) string {
	for name, p := range listPatterns {
		if p.MatchString(line) {
			return name
		}
	}
	return "unknown"
}

// chunkID derives a stable UUID for a chunk from its document and position, so
// a re-run of the same in-flight document assigns ids deterministically while
// distinct documents never collide.
func chunkID(documentID string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(documentID+":"+strconv.Itoa(index))).String()
}
