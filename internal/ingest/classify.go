package ingest

import "strings"

// skipPrefixes are src values that never denote a same-machine relative file:
// externally hosted, inlined, or already absolute. Prefix match is
// case-sensitive, matching how browsers emit these schemes in saved pages.
var skipPrefixes = []string{"http://", "https://", "data:", "blob:", "file:"}

// classifyRef trims a raw src attribute value and reports whether it is a
// relative-path candidate worth copying. Anything that is not empty, not
// scheme-prefixed, and not an absolute path is accepted.
func classifyRef(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	for _, p := range skipPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return "", false
		}
	}
	if strings.HasPrefix(trimmed, "/") {
		return "", false
	}
	return trimmed, true
}

// percentDecode decodes %XX escapes in a path fragment into raw bytes.
// Malformed escapes (short input, non-hex digits) pass through literally,
// so decoding never fails.
func percentDecode(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for i := 0; i < len(input); {
		if input[i] == '%' && i+2 < len(input) {
			hi, okHi := hexVal(input[i+1])
			lo, okLo := hexVal(input[i+2])
			if okHi && okLo {
				b.WriteByte(hi<<4 | lo)
				i += 3
				continue
			}
		}
		b.WriteByte(input[i])
		i++
	}
	return b.String()
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
