package highlight

import (
	"fmt"
	"io"
	"sort"

	"provtrack/internal/artifact"

	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	lineNoColor = color.New(color.FgYellow)
	scrollColor = color.New(color.FgGreen, color.Bold)
)

// TextSource supplies the panel text for a kind.
type TextSource interface {
	Text(kind artifact.Kind) artifact.Text
}

// Terminal is a Surface that prints highlighted lines instead of painting
// panels. Call Flush after Select.
type Terminal struct {
	w       io.Writer
	texts   TextSource
	marked  map[artifact.Kind]map[int]bool
	scrolls map[artifact.Kind]int
}

func NewTerminal(w io.Writer, texts TextSource) *Terminal {
	t := &Terminal{w: w, texts: texts}
	t.ClearHighlights()
	return t
}

func (t *Terminal) ClearHighlights() {
	t.marked = map[artifact.Kind]map[int]bool{}
	t.scrolls = map[artifact.Kind]int{}
}

func (t *Terminal) Highlight(kind artifact.Kind, lines []int) {
	if t.marked[kind] == nil {
		t.marked[kind] = map[int]bool{}
	}
	for _, n := range lines {
		t.marked[kind][n] = true
	}
}

func (t *Terminal) ScrollTo(kind artifact.Kind, line int) {
	t.scrolls[kind] = line
}

// Flush prints every highlighted line grouped by panel, in display order.
func (t *Terminal) Flush() error {
	for _, kind := range artifact.Kinds {
		marked := t.marked[kind]
		if len(marked) == 0 {
			continue
		}
		if _, err := headerColor.Fprintf(t.w, "== %s ==\n", kind); err != nil {
			return err
		}
		lines := make([]int, 0, len(marked))
		for n := range marked {
			lines = append(lines, n)
		}
		sort.Ints(lines)

		text := t.texts.Text(kind)
		scrolled, hasScroll := t.scrolls[kind]
		for _, n := range lines {
			prefix := "  "
			if hasScroll && n == scrolled {
				prefix = scrollColor.Sprint("> ")
			}
			if _, err := fmt.Fprintf(t.w, "%s%s %s\n", prefix, lineNoColor.Sprintf("%5d", n), text.Line(n)); err != nil {
				return err
			}
		}
	}
	return nil
}
