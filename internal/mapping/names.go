package mapping

// Entry is one source unit and the target units it corresponds to.
type Entry struct {
	Source  string   `json:"source"`
	Targets []string `json:"targets"`
}

// NameTable is one directed channel of the upstream correspondence graph.
// Entries keep the order they were supplied in.
type NameTable struct {
	entries []Entry
	pos     map[string]int
}

// NewNameTable builds a table from entries in order. A repeated source
// replaces the targets of its first occurrence.
func NewNameTable(entries ...Entry) NameTable {
	var t NameTable
	for _, e := range entries {
		t.Set(e.Source, e.Targets...)
	}
	return t
}

func (t *NameTable) Set(source string, targets ...string) {
	if t.pos == nil {
		t.pos = make(map[string]int)
	}
	cp := append([]string(nil), targets...)
	if i, ok := t.pos[source]; ok {
		t.entries[i].Targets = cp
		return
	}
	t.pos[source] = len(t.entries)
	t.entries = append(t.entries, Entry{Source: source, Targets: cp})
}

func (t NameTable) Entries() []Entry { return t.entries }

func (t NameTable) Len() int { return len(t.entries) }

// Sources returns the source names in supplied order.
func (t NameTable) Sources() []string {
	out := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.Source)
	}
	return out
}

func (t NameTable) Targets(source string) []string {
	if i, ok := t.pos[source]; ok {
		return t.entries[i].Targets
	}
	return nil
}

// NameMapping is the sparse name-level correspondence graph produced upstream.
// Channels are neither required to be symmetric nor complete.
type NameMapping struct {
	Version    int
	PreToPost  NameTable
	PostToPre  NameTable
	PostToCode NameTable
	CodeToPost NameTable
}

// Empty returns a mapping with every channel empty.
func Empty() *NameMapping {
	return &NameMapping{Version: 1}
}

// KernelNames returns the generated-code unit names known to the mapping, in
// the order the code-to-post channel supplied them.
func (m *NameMapping) KernelNames() []string {
	if m == nil {
		return nil
	}
	return m.CodeToPost.Sources()
}
