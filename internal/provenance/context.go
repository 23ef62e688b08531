package provenance

import (
	"log/slog"
	"time"

	"provtrack/internal/artifact"
	"provtrack/internal/index"
	"provtrack/internal/mapping"
	"provtrack/internal/resolver"
)

// Inputs are everything one report load consumes.
type Inputs struct {
	Name      string
	PreGraph  artifact.Text
	PostGraph artifact.Text
	Code      artifact.Code
	Mapping   *mapping.NameMapping
	// RawMapping is the undecoded node-mapping document, kept for diagnostics.
	RawMapping []byte
}

// Context is built once per report load and never mutated afterwards. A
// reload builds a new Context.
type Context struct {
	name        string
	pre         artifact.Text
	post        artifact.Text
	code        artifact.Code
	indices     mapping.Indices
	tables      *mapping.Tables
	stats       *BuildReport
	fingerprint uint64
}

// Options tune how a Context is built.
type Options struct {
	Markers index.Markers
	Logger  *slog.Logger
}

// Build indexes every artifact and translates the name mapping into line
// tables. It never fails: missing or malformed inputs produce empty channels.
func Build(in Inputs, opts Options) *Context {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("report", in.Name)

	nm := in.Mapping
	if nm == nil {
		nm = mapping.Empty()
	}
	report := NewBuildReport(in.Name)
	ix := index.NewIndexer(opts.Markers)

	h := report.BeginStage("index")
	indices := mapping.Indices{
		Pre:  ix.BuildGraph(in.PreGraph),
		Post: ix.BuildGraph(in.PostGraph),
		Code: ix.Build(artifact.GeneratedCode, in.Code.Variant(), in.Code.Text(), nm.KernelNames()),
	}
	report.EndStage(h, map[string]float64{
		"pre_units":  float64(len(indices.Pre)),
		"post_units": float64(len(indices.Post)),
		"code_units": float64(len(indices.Code)),
	})
	if in.PreGraph.Blank() {
		report.AddSignal("missing_pre_graph", "index", "warning", "pre graph artifact is empty or missing")
	}
	if in.PostGraph.Blank() {
		report.AddSignal("missing_post_graph", "index", "warning", "post graph artifact is empty or missing")
	}
	if !in.Code.Present() {
		report.AddSignal("missing_generated_code", "index", "warning", "no generated code variant present")
	}

	h = report.BeginStage("translate")
	tables, tstats := mapping.BuildTables(nm, indices, in.Code.Variant())
	counters := map[string]float64{}
	for channel, s := range tstats {
		counters[channel+"_lines"] = float64(s.Lines)
		unresolved := len(s.MissingSources) + len(s.MissingTargets)
		counters[channel+"_unresolved"] = float64(unresolved)
		if unresolved > 0 {
			logger.Debug("unresolved names skipped",
				"channel", channel,
				"missing_sources", s.MissingSources,
				"missing_targets", s.MissingTargets)
		}
	}
	report.EndStage(h, counters)

	c := &Context{
		name:    in.Name,
		pre:     in.PreGraph,
		post:    in.PostGraph,
		code:    in.Code,
		indices: indices,
		tables:  tables,
		stats:   report,
	}
	c.fingerprint = fingerprint(in)
	report.Finish()

	logger.Info("provenance context built",
		"variant", string(in.Code.Variant()),
		"pre_lines", in.PreGraph.Len(),
		"post_lines", in.PostGraph.Len(),
		"code_lines", in.Code.Text().Len(),
		"duration", time.Duration(report.DurationMS)*time.Millisecond)
	return c
}

// Resolve answers one highlight query against this context.
func (c *Context) Resolve(source artifact.Kind, line int) resolver.HighlightResult {
	return resolver.Resolve(source, line, c.tables)
}

func (c *Context) Name() string { return c.name }

func (c *Context) Variant() artifact.Variant { return c.code.Variant() }

func (c *Context) Tables() *mapping.Tables { return c.tables }

func (c *Context) Indices() mapping.Indices { return c.indices }

func (c *Context) Report() *BuildReport { return c.stats }

func (c *Context) Fingerprint() uint64 { return c.fingerprint }

// Text returns the text shown in the panel for kind. The generated-code panel
// is empty when no variant is present.
func (c *Context) Text(kind artifact.Kind) artifact.Text {
	switch kind {
	case artifact.PreGraph:
		return c.pre
	case artifact.PostGraph:
		return c.post
	case artifact.GeneratedCode:
		return c.code.Text()
	}
	return artifact.Text{}
}

// HighlightIndex precomputes the result for every line of every present
// artifact that corresponds to something. It is what the static report page
// consults on pointer events.
func (c *Context) HighlightIndex() map[artifact.Kind]map[int]resolver.HighlightResult {
	out := make(map[artifact.Kind]map[int]resolver.HighlightResult, len(artifact.Kinds))
	for _, kind := range artifact.Kinds {
		text := c.Text(kind)
		lines := make(map[int]resolver.HighlightResult)
		for n := 1; n <= text.Len(); n++ {
			res := c.Resolve(kind, n)
			if res.Empty() {
				continue
			}
			lines[n] = res
		}
		out[kind] = lines
	}
	return out
}
