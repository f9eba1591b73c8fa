package ingest

import "strings"

const (
	// srcWindow bounds how far past a tag start we look for its src attribute.
	// Attributes beyond the window are missed; this is a pragmatic scan, not a parser.
	srcWindow = 1000
	// rescanOffset is how far past a tag start scanning resumes.
	rescanOffset = 4
)

// refScanner yields candidate asset references from document text. Isolating
// the scan behind this interface keeps the copy/resolve logic independent of
// how references are located, so the byte scan could be swapped for a real
// tokenizer later.
type refScanner interface {
	// next returns the raw src attribute value of the next img tag. found is
	// false once no further tag exists; a tag without a usable src yields an
	// empty raw value with found still true.
	next() (raw string, found bool)
}

// imgScanner finds <img ... src="..."> occurrences without building a DOM.
// Tag and attribute matching is case-insensitive; the captured value is
// everything up to the next occurrence of the opening quote character.
type imgScanner struct {
	content string
	lower   string
	pos     int
}

func newImgScanner(content string) *imgScanner {
	return &imgScanner{content: content, lower: asciiLower(content)}
}

// asciiLower lowercases only A-Z bytes. Unlike strings.ToLower it preserves
// byte length, so offsets found in the result index the original string, and
// it is all that "<img"/"src=" matching needs.
func asciiLower(s string) string {
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func (s *imgScanner) next() (string, bool) {
	idx := strings.Index(s.lower[s.pos:], "<img")
	if idx < 0 {
		s.pos = len(s.content)
		return "", false
	}
	tagStart := s.pos + idx
	s.pos = tagStart + rescanOffset

	end := tagStart + srcWindow
	if end > len(s.content) {
		end = len(s.content)
	}
	region := s.content[tagStart:end]

	srcIdx := strings.Index(s.lower[tagStart:end], "src=")
	if srcIdx < 0 {
		return "", true
	}
	quotePos := srcIdx + len("src=")
	if quotePos >= len(region) {
		return "", true
	}
	quote := region[quotePos]
	if quote != '"' && quote != '\'' {
		return "", true
	}
	valueStart := quotePos + 1
	closing := strings.IndexByte(region[valueStart:], quote)
	if closing < 0 {
		return "", true
	}
	return region[valueStart : valueStart+closing], true
}
