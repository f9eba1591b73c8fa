package extract

import "strings"

// extractHTML strips tags from HTML bytes and returns the remaining text with
// runs of whitespace collapsed. script and style bodies are dropped. This is
// deliberately not a DOM parser; indexing only needs the visible words.
func extractHTML(content []byte) (string, error) {
	s := string(content)
	lower := asciiLower(s)
	var b strings.Builder
	b.Grow(len(s) / 2)

	i := 0
	for i < len(s) {
		if s[i] != '<' {
			b.WriteByte(s[i])
			i++
			continue
		}
		if end, ok := skipRawElement(lower, i, "script"); ok {
			i = end
			continue
		}
		if end, ok := skipRawElement(lower, i, "style"); ok {
			i = end
			continue
		}
		gt := strings.IndexByte(s[i:], '>')
		if gt < 0 {
			break
		}
		b.WriteByte(' ')
		i += gt + 1
	}
	return strings.Join(strings.Fields(b.String()), " "), nil
}

// skipRawElement returns the position just past </name> when an element whose
// body must not be indexed starts at pos. Unterminated elements swallow the
// rest of the input.
func skipRawElement(lower string, pos int, name string) (int, bool) {
	if !strings.HasPrefix(lower[pos:], "<"+name) {
		return 0, false
	}
	closing := "</" + name
	idx := strings.Index(lower[pos:], closing)
	if idx < 0 {
		return len(lower), true
	}
	end := pos + idx
	gt := strings.IndexByte(lower[end:], '>')
	if gt < 0 {
		return len(lower), true
	}
	return end + gt + 1, true
}

// asciiLower lowercases only A-Z bytes. Unlike strings.ToLower it preserves
// byte length, so offsets into the result are valid for the original string.
func asciiLower(s string) string {
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
