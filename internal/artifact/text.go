package artifact

import "strings"

// Text is the immutable, line-addressed content of one artifact.
type Text struct {
	lines []string
}

// NewText splits content into lines. A trailing newline does not produce an
// extra empty line, and CRLF endings are normalised.
func NewText(content string) Text {
	if content == "" {
		return Text{}
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return Text{lines: lines}
}

func (t Text) Len() int { return len(t.lines) }

// Line returns the 1-based line n, or "" when n is out of range.
func (t Text) Line(n int) string {
	if n < 1 || n > len(t.lines) {
		return ""
	}
	return t.lines[n-1]
}

// Each calls fn with every line and its 1-based number.
func (t Text) Each(fn func(n int, line string)) {
	for i, l := range t.lines {
		fn(i+1, l)
	}
}

func (t Text) String() string {
	return strings.Join(t.lines, "\n")
}

// Blank reports whether the text has no non-whitespace content.
func (t Text) Blank() bool {
	for _, l := range t.lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}
