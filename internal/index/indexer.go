package index

import (
	"strings"

	"provtrack/internal/artifact"
)

// LineIndex maps a unit name to the ordered 1-based lines that belong to it.
type LineIndex map[string][]int

// Lines returns the lines recorded for name, or nil.
func (idx LineIndex) Lines(name string) []int {
	return idx[name]
}

func (idx LineIndex) Has(name string) bool {
	_, ok := idx[name]
	return ok
}

// Markers are the textual conventions the indexer keys on.
type Markers struct {
	Comment        string // graph comment prefix
	KernelStart    string // LanguageA kernel definition start
	KernelEnd      string // LanguageA kernel definition end
	CallSiteAnchor string // LanguageB: lines before the first anchor are ignored
	// DebugHandles lets LanguageB names of the form name:N match calls of
	// the bare name.
	DebugHandles bool
}

func DefaultMarkers() Markers {
	return Markers{
		Comment:     "#",
		KernelStart: "async_compile.triton(",
		KernelEnd:   "''', device_str=",
	}
}

// Indexer builds line indices for every artifact of a report.
type Indexer struct {
	markers Markers
}

// NewIndexer creates an indexer. Empty markers fall back to the defaults.
func NewIndexer(m Markers) *Indexer {
	def := DefaultMarkers()
	if m.Comment == "" {
		m.Comment = def.Comment
	}
	if m.KernelStart == "" {
		m.KernelStart = def.KernelStart
	}
	if m.KernelEnd == "" {
		m.KernelEnd = def.KernelEnd
	}
	return &Indexer{markers: m}
}

func (i *Indexer) Markers() Markers { return i.markers }

// Build dispatches on the artifact kind and code variant. names is only used
// for LanguageB and must be in supplied order.
func (i *Indexer) Build(kind artifact.Kind, variant artifact.Variant, text artifact.Text, names []string) LineIndex {
	switch kind {
	case artifact.PreGraph, artifact.PostGraph:
		return i.BuildGraph(text)
	case artifact.GeneratedCode:
		switch variant {
		case artifact.LanguageA:
			return i.BuildBlocks(text)
		case artifact.LanguageB:
			return i.BuildCallSites(text, names)
		}
	}
	return LineIndex{}
}

// BuildGraph indexes a graph dump: one declaration per line, the last
// declaration of a name wins.
func (i *Indexer) BuildGraph(text artifact.Text) LineIndex {
	idx := LineIndex{}
	text.Each(func(n int, line string) {
		name, ok := graphNodeName(line, i.markers.Comment)
		if !ok {
			return
		}
		idx[name] = []int{n}
	})
	return idx
}

func graphNodeName(line, comment string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, comment) {
		return "", false
	}
	name, _, _ := strings.Cut(trimmed, "=")
	name, _, _ = strings.Cut(name, ":")
	name = strings.TrimSpace(name)
	return name, name != ""
}

// BuildBlocks indexes block-delimited generated code. Every line from a start
// marker through the matching end marker belongs to the kernel named on the
// start line. Blocks still open at EOF are dropped.
func (i *Indexer) BuildBlocks(text artifact.Text) LineIndex {
	idx := LineIndex{}
	var (
		open  bool
		name  string
		lines []int
	)
	text.Each(func(n int, line string) {
		if strings.Contains(line, i.markers.KernelStart) {
			start, _, _ := strings.Cut(line, "=")
			start = strings.TrimSpace(start)
			// a new start while a block is open discards the unterminated one
			open, name, lines = start != "", start, nil
		}
		if !open {
			return
		}
		lines = append(lines, n)
		if strings.Contains(line, i.markers.KernelEnd) {
			idx[name] = append(idx[name], lines...)
			open, name, lines = false, "", nil
		}
	})
	return idx
}

// BuildCallSites indexes call-site generated code. A line belongs to the first
// name, in supplied order, that appears on it as a call expression.
//
// With debug handles enabled, a name:N is first looked up by its full handle:
// the next call of the bare name after the handle line is its only line. A
// handle that never appears falls back to every call of the bare name.
func (i *Indexer) BuildCallSites(text artifact.Text, names []string) LineIndex {
	idx := LineIndex{}
	keys := i.callKeys(names)
	if len(keys) == 0 {
		return idx
	}

	first := 1
	if anchor := i.markers.CallSiteAnchor; anchor != "" {
		first = anchorLine(text, anchor)
	}

	claimed := map[int]bool{}
	handled := map[string]bool{}
	for _, k := range keys {
		if k.handle == "" {
			continue
		}
		if n, ok := handleCallLine(text, first, k); ok && !claimed[n] {
			idx[k.name] = []int{n}
			claimed[n] = true
			handled[k.name] = true
		}
	}

	text.Each(func(n int, line string) {
		if n < first || claimed[n] {
			return
		}
		for _, k := range keys {
			if handled[k.name] {
				continue
			}
			if strings.Contains(line, k.call) {
				idx[k.name] = append(idx[k.name], n)
				return
			}
		}
	})
	return idx
}

type callKey struct {
	name   string // index key, as supplied
	call   string // call expression searched for
	handle string // full name:N when matched by debug handle
}

func (i *Indexer) callKeys(names []string) []callKey {
	keys := make([]callKey, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		k := callKey{name: n, call: n + "("}
		if i.markers.DebugHandles {
			if bare, _, ok := strings.Cut(n, ":"); ok && bare != "" {
				k.call = bare + "("
				k.handle = n
			}
		}
		keys = append(keys, k)
	}
	return keys
}

// handleCallLine finds the first line from first on that mentions the full
// handle, then the next line after it calling the bare name.
func handleCallLine(text artifact.Text, first int, k callKey) (int, bool) {
	for n := first; n <= text.Len(); n++ {
		if !strings.Contains(text.Line(n), k.handle) {
			continue
		}
		for m := n + 1; m <= text.Len(); m++ {
			if strings.Contains(text.Line(m), k.call) {
				return m, true
			}
		}
		return 0, false
	}
	return 0, false
}

// anchorLine returns the first line containing anchor, or 1 when absent.
func anchorLine(text artifact.Text, anchor string) int {
	for n := 1; n <= text.Len(); n++ {
		if strings.Contains(text.Line(n), anchor) {
			return n
		}
	}
	return 1
}
