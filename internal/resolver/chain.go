package resolver

import (
	"provtrack/internal/artifact"
	"provtrack/internal/mapping"
)

// HighlightResult maps every artifact other than the queried one to the lines
// that correspond to the queried line. Lists may be empty but never nil.
type HighlightResult map[artifact.Kind][]int

// Lines returns the lines for kind, or nil when kind is not a target.
func (r HighlightResult) Lines(kind artifact.Kind) []int {
	return r[kind]
}

// Empty reports whether no target artifact has any line.
func (r HighlightResult) Empty() bool {
	for _, lines := range r {
		if len(lines) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of r.
func (r HighlightResult) Clone() HighlightResult {
	if r == nil {
		return nil
	}
	out := make(HighlightResult, len(r))
	for kind, lines := range r {
		out[kind] = append([]int{}, lines...)
	}
	return out
}

// Route is a chain of artifacts walked from the queried one. The last element
// is the artifact the route produces lines for.
type Route []artifact.Kind

func (r Route) Target() artifact.Kind { return r[len(r)-1] }

// routes lists, per source artifact, how each other artifact is reached.
// Graph and generated code only meet through the post graph.
var routes = map[artifact.Kind][]Route{
	artifact.PreGraph: {
		{artifact.PostGraph},
		{artifact.PostGraph, artifact.GeneratedCode},
	},
	artifact.PostGraph: {
		{artifact.PreGraph},
		{artifact.GeneratedCode},
	},
	artifact.GeneratedCode: {
		{artifact.PostGraph},
		{artifact.PostGraph, artifact.PreGraph},
	},
}

// Routes returns the routes used for queries originating in source.
func Routes(source artifact.Kind) []Route {
	return routes[source]
}

// Resolve computes the lines in every other artifact that correspond to line
// in source. It only reads tables and allocates a fresh result per call.
func Resolve(source artifact.Kind, line int, tables *mapping.Tables) HighlightResult {
	out := HighlightResult{}
	for _, kind := range artifact.Kinds {
		if kind != source {
			out[kind] = []int{}
		}
	}
	if !source.Valid() || line < 1 || tables == nil {
		return out
	}
	for _, route := range routes[source] {
		out[route.Target()] = walk(source, line, route, tables)
	}
	return out
}

// walk follows route one hop at a time. Each hop concatenates the targets of
// every line reached so far, keeping duplicates.
func walk(source artifact.Kind, line int, route Route, tables *mapping.Tables) []int {
	reached := []int{line}
	from := source
	for _, to := range route {
		table := tables.Channel(from, to)
		next := []int{}
		for _, l := range reached {
			next = append(next, table.Lines(l)...)
		}
		if len(next) == 0 {
			return []int{}
		}
		reached, from = next, to
	}
	return reached
}
